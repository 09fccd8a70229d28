package domain

// FulfillmentKind selects the media backend a request goes to.
type FulfillmentKind string

const (
	FulfillmentKindMovie FulfillmentKind = "movie"
	FulfillmentKindShow  FulfillmentKind = "show"
)

func (k FulfillmentKind) String() string { return string(k) }

func (k FulfillmentKind) IsValid() bool {
	return k == FulfillmentKindMovie || k == FulfillmentKindShow
}

// FulfillmentStatus is the provider's answer to a request.
type FulfillmentStatus string

const (
	FulfillmentAccepted FulfillmentStatus = "accepted"
	FulfillmentRejected FulfillmentStatus = "rejected"
)

// FulfillmentResult is returned by fulfillment providers. Reason is set
// for rejections; Title is set when the provider resolved the external id.
type FulfillmentResult struct {
	Status FulfillmentStatus
	Reason string
	Title  string
}

// Accepted builds an accepted result.
func Accepted(title string) FulfillmentResult {
	return FulfillmentResult{Status: FulfillmentAccepted, Title: title}
}

// Rejected builds a rejected result.
func Rejected(reason, title string) FulfillmentResult {
	return FulfillmentResult{Status: FulfillmentRejected, Reason: reason, Title: title}
}

// FulfillmentOutcome is what a gated fulfillment request returns to the
// caller: the gate decision and, when allowed, the provider result.
type FulfillmentOutcome struct {
	Decision GateDecision
	Result   *FulfillmentResult
}
