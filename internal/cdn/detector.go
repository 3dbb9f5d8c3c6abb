package cdn

type Action int

const (
	ActionSkip Action = iota
	ActionUpload
)

func (a Action) String() string {
	if a == ActionUpload {
		return "upload"
	}
	return "skip"
}

const (
	ReasonNew         = "new"
	ReasonSizeChanged = "size-changed"
	ReasonUnchanged   = "unchanged"
)

// Decision is the outcome of comparing one local asset with the inventory
type Decision struct {
	Asset  *LocalAsset
	Key    string
	Action Action
	Reason string
}

// Classify decides, per asset and in input order, whether it must be uploaded.
//
// Only the byte size is compared. Timestamps are ignored, and an edit that keeps
// the size unchanged is not detected; content hashing is deliberately not done.
func Classify(assets []*LocalAsset, inventory Inventory, keyPrefix string) []Decision {
	decisions := make([]Decision, 0, len(assets))
	for _, asset := range assets {
		key := ObjectKey(keyPrefix, asset.RelPath)
		d := Decision{Asset: asset, Key: key}

		remote, found := inventory[key]
		switch {
		case !found:
			d.Action, d.Reason = ActionUpload, ReasonNew
		case remote.Size != asset.Size:
			d.Action, d.Reason = ActionUpload, ReasonSizeChanged
		default:
			d.Action, d.Reason = ActionSkip, ReasonUnchanged
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// Select returns the assets that are missing remotely or differ in size,
// preserving input order. Remote objects with no local counterpart are ignored.
func Select(assets []*LocalAsset, inventory Inventory, keyPrefix string) UploadPlan {
	plan := make(UploadPlan, 0)
	for _, d := range Classify(assets, inventory, keyPrefix) {
		if d.Action == ActionUpload {
			plan = append(plan, d.Asset)
		}
	}
	return plan
}

// TotalSize sums the byte size of every asset in the plan
func (p UploadPlan) TotalSize() int64 {
	var total int64
	for _, a := range p {
		total += a.Size
	}
	return total
}
