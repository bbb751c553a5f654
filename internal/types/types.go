// Package types holds the records exchanged with the exam REST API.
// Keeping them in one place prevents import cycles: the api client,
// the auth sessions and the page handlers all share these shapes.
//
// Records are plain values. The remote API is the source of truth, so
// nothing here enforces relational integrity.
package types

// Roles reported by the API for administrative users.
const (
	RoleSuperAdmin = "super_admin"
	RoleOrgAdmin   = "org_admin"
	RoleStudent    = "student"
)

// User is the signed-in account of either tier. It is replaced wholesale
// on login and logout, never patched in place.
type User struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role,omitempty"`
	OrganizationID int64  `json:"organization_id,omitempty"`
	Phone          string `json:"phone,omitempty"`
	StudentNumber  string `json:"student_number,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

type Organization struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type OrgAdmin struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	OrganizationID   int64         `json:"organization_id"`
	Organization     *Organization `json:"organization,omitempty"`
	CreatedAt        string        `json:"created_at,omitempty"`
	OrganizationName string        `json:"organization_name,omitempty"`
}

// OrgAdminInput is the create/update payload for an org admin. Password
// may be left empty on update.
type OrgAdminInput struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password,omitempty" validate:"omitempty,min=8"`
	PasswordConfirmation string `json:"password_confirmation,omitempty" validate:"omitempty,eqfield=Password"`
	OrganizationID       int64  `json:"organization_id" validate:"required,gt=0"`
}

type Exam struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	OrganizationID   int64   `json:"organization_id,omitempty"`
	OrganizationName string  `json:"organization_name,omitempty"`
	Fee              float64 `json:"fee,omitempty"`
	Status           string  `json:"status,omitempty"`
	RegistrationEnds string  `json:"registration_deadline,omitempty"`
}

type ExamDate struct {
	ID       int64  `json:"id"`
	ExamID   int64  `json:"exam_id"`
	ExamName string `json:"exam_name,omitempty"`
	Date     string `json:"date"`
	Location string `json:"location,omitempty"`
	Seats    int    `json:"seats,omitempty"`
}

// MyExam is one of the signed-in student's exam registrations, with its
// result once published.
type MyExam struct {
	ID            int64    `json:"id"`
	ExamID        int64    `json:"exam_id"`
	ExamName      string   `json:"exam_name"`
	ExamDate      string   `json:"exam_date,omitempty"`
	Status        string   `json:"status"`
	PaymentStatus string   `json:"payment_status,omitempty"`
	Score         *float64 `json:"score,omitempty"`
	Grade         string   `json:"grade,omitempty"`
}

type Announcement struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Dashboard is the summary shown on the super-admin landing page.
type Dashboard struct {
	Organizations int `json:"organizations"`
	OrgAdmins     int `json:"org_admins"`
	Exams         int `json:"exams"`
	Students      int `json:"students"`
}

// Credentials is the sign-in form of both tiers.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Phone                string `json:"phone,omitempty"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type ProfileUpdate struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty"`
}

type PasswordChange struct {
	CurrentPassword         string `json:"current_password" validate:"required"`
	NewPassword             string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirmation string `json:"new_password_confirmation" validate:"required,eqfield=NewPassword"`
}

// PaymentVerification asks the API to confirm a payment reference for an
// exam registration.
type PaymentVerification struct {
	ExamID    int64  `json:"exam_id" validate:"required,gt=0"`
	Reference string `json:"reference" validate:"required"`
}

type PaymentResult struct {
	Verified bool   `json:"verified"`
	Status   string `json:"status,omitempty"`
	Message  string `json:"message,omitempty"`
}
