package domain

// genericGeocodeError is shown for unrecognized statuses that carry no message.
const genericGeocodeError = "Unable to find that location. Please try again."

var geocodeMessages = map[Status]string{
	StatusEmptyQuery:     "Please enter a location to search",
	StatusZeroResults:    "No results found for that location",
	StatusRequestDenied:  "Location service unavailable. Please try again later.",
	StatusInvalidRequest: "Invalid location format. Please try a different search.",
	StatusOverQueryLimit: "Location service is busy. Please try again in a moment.",
	StatusNetworkError:   "Network error. Please check your connection and try again.",
}

// HumanizeGeocodeError maps a failed response to a user-facing message.
// Successful responses map to the empty string.
func HumanizeGeocodeError(resp GeocodeResponse) string {
	if resp.OK {
		return ""
	}
	if msg, ok := geocodeMessages[resp.Status]; ok {
		return msg
	}
	if resp.ErrorMessage != "" {
		return resp.ErrorMessage
	}
	return genericGeocodeError
}
