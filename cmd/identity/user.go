package identity

import "time"

// Theme and view values accepted by Preferences.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	ViewDashboard = "dashboard"
	ViewPipeline  = "pipeline"
)

// Preferences holds per-user notification and UI settings.
type Preferences struct {
	EmailReminders     bool   `json:"emailReminders"`
	ReminderDaysBefore int    `json:"reminderDaysBefore"`
	Theme              string `json:"theme"`
	DefaultView        string `json:"defaultView"`
}

// DefaultPreferences returns the settings applied to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{
		EmailReminders:     true,
		ReminderDaysBefore: 1,
		Theme:              ThemeSystem,
		DefaultView:        ViewDashboard,
	}
}

// Validate checks preference bounds and enum values.
func (p Preferences) Validate() error {
	if p.ReminderDaysBefore < 0 || p.ReminderDaysBefore > 30 {
		return OpError{Op: "identity.Preferences", Kind: ErrInvalidInput, Msg: "reminderDaysBefore must be between 0 and 30"}
	}
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return OpError{Op: "identity.Preferences", Kind: ErrInvalidInput, Msg: "theme must be light, dark or system"}
	}
	switch p.DefaultView {
	case ViewDashboard, ViewPipeline:
	default:
		return OpError{Op: "identity.Preferences", Kind: ErrInvalidInput, Msg: "defaultView must be dashboard or pipeline"}
	}
	return nil
}

// User is PlaceMate's canonical account record.
// The password hash never lives on this struct; see AuthUser.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`

	Avatar         *string `json:"avatar,omitempty"`
	College        *string `json:"college,omitempty"`
	GraduationYear *int    `json:"graduationYear,omitempty"`

	Preferences Preferences `json:"preferences"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthUser is the credential projection used only by the login path.
// It is never serialized to clients.
type AuthUser struct {
	User
	PasswordHash string `json:"-"`
}

// CreateUserInput describes a registration request.
// Email must already be validated/normalized by the caller's service layer;
// the store normalizes again defensively before the uniqueness check.
type CreateUserInput struct {
	Email          string
	Name           string
	PasswordHash   string
	College        *string
	GraduationYear *int
	Now            time.Time
}

// ProfileUpdate carries partial profile changes; nil fields stay untouched.
type ProfileUpdate struct {
	Name           *string
	Avatar         *string
	College        *string
	GraduationYear *int
	Now            time.Time
}

// ValidateName checks the display name constraints shared by signup and update.
func ValidateName(name string) error {
	if name == "" {
		return OpError{Op: "identity.ValidateName", Kind: ErrInvalidInput, Msg: "name is required"}
	}
	if len(name) > 100 {
		return OpError{Op: "identity.ValidateName", Kind: ErrInvalidInput, Msg: "name must be at most 100 characters"}
	}
	return nil
}

// ValidateGraduationYear bounds the year to something plausible.
func ValidateGraduationYear(year int, now time.Time) error {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if year < 1900 || year > now.Year()+10 {
		return OpError{Op: "identity.ValidateGraduationYear", Kind: ErrInvalidInput, Msg: "graduationYear out of range"}
	}
	return nil
}
