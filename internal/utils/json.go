package utils

import (
	"encoding/json"
	"log"
)

// SafeJSONParse unmarshals an inbound payload without panicking on
// malformed input.
func SafeJSONParse(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// LogError logs err with a context tag when err is non-nil.
func LogError(err error, context string) {
	if err != nil {
		log.Printf("Error [%s]: %v", context, err)
	}
}
