package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
// Codes by category:
//
//	FILE001-FILE006  upload file problems (size, type, encoding, parsing)
//	QRY001-QRY003    listing/search parameter problems
//	DB001-DB007      store failures (constraints, connectivity)
//	UPL001-UPL003    upload capacity and request lifetime
//	RATE001          request throttling
//	ERR000           fallback; check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import "strings"

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "only .csv files",
		msg: UserMessage{
			Message: "Only CSV files are allowed",
			Action:  "Upload a file with a .csv extension",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "Invalid CSV file encoding. Please use UTF-8 encoding",
			Action:  "Save the file as UTF-8 and upload it again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Send the CSV in the multipart field named file",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "CSV file is empty or has no data rows",
			Action:  "Add at least one product row below the header",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE006",
		},
	},

	// Query parameter errors
	{
		pattern: "invalid price range",
		msg: UserMessage{
			Message: "minPrice cannot be greater than maxPrice",
			Action:  "Swap or correct the price bounds",
			Code:    "QRY001",
		},
	},
	{
		pattern: "invalid pagination",
		msg: UserMessage{
			Message: "Invalid page or limit",
			Action:  "Use page >= 1 and limit between 1 and 100",
			Code:    "QRY002",
		},
	},
	{
		pattern: "invalid filter",
		msg: UserMessage{
			Message: "Invalid search filter",
			Action:  "Use non-negative numbers for minPrice and maxPrice",
			Code:    "QRY003",
		},
	},

	// Store errors
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A product with this key already exists",
			Action:  "Check for conflicting rows in your CSV",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Check for conflicting rows in your CSV",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates check constraint",
		msg: UserMessage{
			Message: "A value is outside the allowed range",
			Action:  "Review prices and quantities in the failed rows",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try uploading a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// Upload lifetime errors
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL003",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
