// Package state holds the client-side authentication state machine: a pure
// reducer over a closed set of events, mirroring what the web UI tracks.
package state

// Status enumerates the auth lifecycle phases of the client.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticating  Status = "authenticating"
	StatusAuthenticated   Status = "authenticated"
	StatusError           Status = "error"
)

// Profile is the subset of the user record the client keeps around.
type Profile struct {
	ID    int64
	Name  string
	Email string
}

// State is an immutable snapshot of the client auth machine.
type State struct {
	Status Status
	Token  string
	User   *Profile
	Alert  string
}

// Event is the closed set of transitions. The unexported marker method keeps
// the set sealed: new variants must be added here, next to the reducer.
type Event interface {
	isEvent()
}

// SubmitStarted fires when a register or login form is submitted.
type SubmitStarted struct{}

// AuthSucceeded carries the token from a successful register/login response.
type AuthSucceeded struct {
	Token string
}

// UserLoaded carries the profile fetched after authentication.
type UserLoaded struct {
	User Profile
}

// AuthFailed carries the alert message from a failed register/login response.
type AuthFailed struct {
	Message string
}

// FormRejected is a pre-submit validation failure. It only raises the alert;
// the request never reaches the server and the current session is untouched.
type FormRejected struct {
	Message string
}

// AlertCleared dismisses the transient alert.
type AlertCleared struct{}

// LoggedOut is an explicit logout.
type LoggedOut struct{}

func (SubmitStarted) isEvent() {}
func (AuthSucceeded) isEvent() {}
func (UserLoaded) isEvent()    {}
func (AuthFailed) isEvent()    {}
func (FormRejected) isEvent()  {}
func (AlertCleared) isEvent()  {}
func (LoggedOut) isEvent()     {}

// Reduce maps (state, event) to the next state. It is pure: token persistence
// is handled by the session store around it.
func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case SubmitStarted:
		s.Status = StatusAuthenticating
		s.Alert = ""
	case AuthSucceeded:
		s.Status = StatusAuthenticated
		s.Token = ev.Token
		s.Alert = ""
	case UserLoaded:
		user := ev.User
		s.User = &user
	case AuthFailed:
		s = State{
			Status: StatusError,
			Alert:  ev.Message,
		}
	case FormRejected:
		s.Alert = ev.Message
	case AlertCleared:
		if s.Status == StatusError {
			s.Status = StatusUnauthenticated
		}
		s.Alert = ""
	case LoggedOut:
		s = State{Status: StatusUnauthenticated}
	}
	return s
}
