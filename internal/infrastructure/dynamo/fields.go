package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUpdatedAt = "updated_at"
	fieldVerified  = "verified"
	fieldAttempts  = "attempts"
	fieldRollNo    = "roll_no"
	fieldIsSold    = "is_sold"
	fieldStatus    = "status"
)

// Values of the products.status attribute, the hash key of the feed index.
const (
	statusAvailable = "available"
	statusSold      = "sold"
)

func listingStatus(sold bool) string {
	if sold {
		return statusSold
	}
	return statusAvailable
}
