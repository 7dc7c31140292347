package enums

// PostType is the submission tier. Paid tiers are priced in the payment
// gate; the type is carried on the post and on the payment record.
type PostType string

const (
	PostTypeFree     PostType = "free"
	PostTypeAd35     PostType = "ad35"
	PostTypeOfftopic PostType = "offtopic50"
)

func (t PostType) IsPaid() bool {
	return t == PostTypeAd35 || t == PostTypeOfftopic
}

func ParsePostType(raw string) (PostType, bool) {
	switch PostType(raw) {
	case PostTypeFree, PostTypeAd35, PostTypeOfftopic:
		return PostType(raw), true
	default:
		return "", false
	}
}

type PostStatus string

const (
	PostStatusPending  PostStatus = "pending"
	PostStatusApproved PostStatus = "approved"
	PostStatusRejected PostStatus = "rejected"
)
