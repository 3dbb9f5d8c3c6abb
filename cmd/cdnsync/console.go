package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/openmined/cdnsync/internal/cdn"
)

// consoleSink renders sync and purge progress for a human operator
type consoleSink struct {
	out io.Writer
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{out: out}
}

func (c *consoleSink) Emit(e cdn.Event) {
	switch e.Type {
	case cdn.EventListingStarted:
		fmt.Fprintln(c.out, cyan.Render("Comparing local files and bucket..."))
	case cdn.EventUploadStarted:
		fmt.Fprintln(c.out, cyan.Render("Upload in progress......"),
			gray.Render(fmt.Sprintf("(%d files, %s)", e.Count, humanize.Bytes(uint64(e.Size)))))
	case cdn.EventObjectUploaded:
		fmt.Fprintln(c.out, lightGray.Render("Uploading file path:"), e.Key)
	case cdn.EventUploadFailed:
		fmt.Fprintln(c.out, red.Render("Failed:"), e.Key, gray.Render(e.Reason))
	case cdn.EventUploadCompleted:
		if e.Count == 0 {
			fmt.Fprintln(c.out, green.Render("No new files to upload."))
			return
		}
		fmt.Fprintln(c.out, green.Render("Upload completed successfully."))
	case cdn.EventBucketAlreadyEmpty:
		fmt.Fprintln(c.out, green.Render(fmt.Sprintf("The bucket %s is already empty.", e.Bucket)))
	case cdn.EventBucketEmptied:
		fmt.Fprintln(c.out, green.Render(fmt.Sprintf("The bucket %s is now empty.", e.Bucket)))
	}
}
