package arena

import "fmt"

// Session is minted by the client; the gateway only validates and records
// it. All mutating routes require the four identity fields.
type Session struct {
	Deployment      *string   `json:"deployment,omitempty"`
	UUID            string    `json:"uuid,omitempty"`
	CreateTime      *float64  `json:"create_time,omitempty"`
	FrontendVersion *string   `json:"frontend_version,omitempty"`
	AckTOS          *string   `json:"ack_tos,omitempty"`
	NewBattleTimes  []float64 `json:"new_battle_times,omitempty"`
}

// RequireComplete returns an InvalidRequestError naming the first missing
// identity field, or nil when all four are present.
func (s Session) RequireComplete() error {
	missing := ""
	switch {
	case s.UUID == "":
		missing = "uuid"
	case s.CreateTime == nil:
		missing = "create_time"
	case s.FrontendVersion == nil:
		missing = "frontend_version"
	case s.AckTOS == nil:
		missing = "ack_tos"
	default:
		return nil
	}
	return &InvalidRequestError{
		Field:  "session." + missing,
		Reason: fmt.Sprintf("session is missing required field %s", missing),
	}
}
