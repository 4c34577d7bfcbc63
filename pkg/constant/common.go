package constant

const (
	ADDED                    = "%s added successfully"
	DELETED                  = "%s deleted successfully"
	UPDATED                  = "%s updated successfully"
	INVALID_PAGE_NUMBER      = "Invalid page number"
	PAGE_NUMBER_OUT_OF_RANGE = "Page number out of range"
	UNAUTHORIZED_ACCESS      = "Unauthorized access"
)
