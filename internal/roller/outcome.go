package roller

import (
	"errors"
	"fmt"

	"dinnerdice/internal/places"

	"google.golang.org/api/googleapi"
)

// Status is how a roll ended, as shown to the user.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// NoEligibleMessage is shown when the filter left nothing to choose from.
const NoEligibleMessage = "No eligible restaurants found for that cuisine. Try rolling again."

// Outcome is the user-facing summary of a roll.
type Outcome struct {
	Status   Status
	Messages []string
	Result   *Result
}

// Classify turns the return values of Roll into an Outcome.
func Classify(res *Result, err error) Outcome {
	if err != nil {
		var placesErr *places.APIError
		var googleErr *googleapi.Error
		switch {
		case errors.Is(err, ErrNoEligiblePlace):
			return Outcome{Status: StatusWarning, Messages: []string{NoEligibleMessage}}
		case errors.As(err, &placesErr):
			return Outcome{Status: StatusError, Messages: []string{fmt.Sprintf("Places API error: %s", placesErr.Error())}}
		case errors.As(err, &googleErr):
			return Outcome{Status: StatusError, Messages: []string{fmt.Sprintf("Google API error: %s", googleErr.Error())}}
		default:
			return Outcome{Status: StatusError, Messages: []string{fmt.Sprintf("Something went wrong: %s", err.Error())}}
		}
	}

	if res.DryRun {
		return Outcome{Status: StatusSuccess, Result: res, Messages: []string{"Dry run: history and calendar left untouched"}}
	}
	return Outcome{Status: StatusSuccess, Result: res, Messages: []string{"History Updated", "Calendar Invite Sent"}}
}
