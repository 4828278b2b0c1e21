package gym

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// workoutLocalLayout covers start times serialised without an offset.
const workoutLocalLayout = "2006-01-02T15:04:05"

// StartLayout is how workout start times are rendered, e.g.
// "18:30 – 04 Mar 2025".
const StartLayout = "15:04 – 02 Jan 2006"

// Workout mirrors one entry of GET /api/workout.
type Workout struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Location   string `json:"location"`
	StartTime  string `json:"startTime"`
	Instructor string `json:"instructor"`
}

// ParsedStart returns StartTime as a time, or the zero time when the value
// cannot be parsed.
func (w Workout) ParsedStart() time.Time {
	return parseTime(w.StartTime)
}

// FormatStart renders the start time in local time. Unparsable values are
// returned unchanged.
func (w Workout) FormatStart() string {
	ts := w.ParsedStart()
	if ts.IsZero() {
		return w.StartTime
	}
	return ts.Local().Format(StartLayout)
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	for _, layout := range []string{workoutLocalLayout + ".999999999", workoutLocalLayout} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// BookingRequest is the body of POST /api/Bookings.
type BookingRequest struct {
	UserEmail         string `json:"userEmail"`
	WorkoutIdentifier string `json:"workoutIdentifier"`
}

// User is the account embedded in auth responses.
type User struct {
	GUID      uuid.UUID `json:"Guid"`
	FirstName string    `json:"FirstName"`
	LastName  string    `json:"LastName"`
	Email     string    `json:"Email"`
}

// UnmarshalJSON tolerates a missing or empty Guid.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var raw struct {
		plain
		GUID string `json:"Guid"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)
	u.GUID = uuid.Nil
	if s := strings.TrimSpace(raw.GUID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("parse user guid: %w", err)
		}
		u.GUID = id
	}
	return nil
}

// FullName joins the first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// AuthResponse is returned by the auth service. The token is carried but
// never validated or refreshed.
type AuthResponse struct {
	JWTToken string `json:"jwtToken"`
	User     *User  `json:"user"`
	Error    string `json:"error"`
}

// SignInResult holds the email the auth service confirmed. The service
// answers with a JSON string, an object carrying "email", or plain text.
type SignInResult struct {
	Email string
}

func (r *SignInResult) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		r.Email = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		r.Email = strings.TrimSpace(s)
		return nil
	}

	var obj struct {
		Email string `json:"email"`
		User  *struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	r.Email = strings.TrimSpace(obj.Email)
	if r.Email == "" && obj.User != nil {
		r.Email = strings.TrimSpace(obj.User.Email)
	}
	return nil
}

func (r *SignInResult) UnmarshalText(b []byte) error {
	r.Email = strings.TrimSpace(string(b))
	return nil
}

// RegisterResult is whatever the register endpoint sent back: an
// AuthResponse object or a plain confirmation message.
type RegisterResult struct {
	Auth    *AuthResponse
	Message string
}

func (r *RegisterResult) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = RegisterResult{}
		return nil
	}
	if b[0] == '"' {
		r.Auth = nil
		return json.Unmarshal(b, &r.Message)
	}
	var auth AuthResponse
	if err := json.Unmarshal(b, &auth); err != nil {
		return err
	}
	r.Auth = &auth
	r.Message = ""
	return nil
}

func (r *RegisterResult) UnmarshalText(b []byte) error {
	r.Auth = nil
	r.Message = strings.TrimSpace(string(b))
	return nil
}
