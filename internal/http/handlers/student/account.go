package student

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/ugs-portal/internal/http/handlers/page"
	"github.com/aanand-mishra/ugs-portal/internal/types"
)

// Profile handles GET /profile.
func Profile(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := d.page(r, "Profile")
		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "student/profile", p, err)
			return
		}
		user, err := client.Profile(r.Context())
		if err != nil {
			d.fail(w, r, "student/profile", p, err)
			return
		}
		p.Form = types.ProfileUpdate{Name: user.Name, Email: user.Email, Phone: user.Phone}
		p.Data = user
		d.View.Render(w, http.StatusOK, "student/profile", p)
	}
}

// UpdateProfile handles POST /profile. The session's user is replaced with
// the API's answer so the navigation shows the new name at once.
func UpdateProfile(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upd := types.ProfileUpdate{
			Name:  page.Form(r, "name"),
			Email: page.Form(r, "email"),
			Phone: page.Form(r, "phone"),
		}
		p := d.page(r, "Profile")
		p.Form = upd
		if p.User != nil {
			p.Data = *p.User
		}

		sess, id, err := page.Session(d.Sessions, r)
		if err != nil {
			d.fail(w, r, "student/profile", p, err)
			return
		}
		user, err := d.API(id).UpdateProfile(r.Context(), upd)
		if err != nil {
			d.fail(w, r, "student/profile", p, err)
			return
		}
		if _, err := sess.Login(r.Context(), user, ""); err != nil {
			slog.Error("cannot refresh session user", slog.String("error", err.Error()))
		}

		slog.Info("profile updated", slog.Int64("id", user.ID))
		p.User = &user
		p.Data = user
		p.Notice = "Your profile has been updated."
		d.View.Render(w, http.StatusOK, "student/profile", p)
	}
}

// ChangePassword handles POST /profile/password.
func ChangePassword(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pc := types.PasswordChange{
			CurrentPassword:         r.PostFormValue("current_password"),
			NewPassword:             r.PostFormValue("new_password"),
			NewPasswordConfirmation: r.PostFormValue("new_password_confirmation"),
		}
		p := d.page(r, "Profile")
		if p.User != nil {
			p.Form = types.ProfileUpdate{Name: p.User.Name, Email: p.User.Email, Phone: p.User.Phone}
			p.Data = *p.User
		}

		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "student/profile", p, err)
			return
		}
		if err := client.ChangePassword(r.Context(), pc); err != nil {
			d.fail(w, r, "student/profile", p, err)
			return
		}

		p.Notice = "Your password has been changed."
		d.View.Render(w, http.StatusOK, "student/profile", p)
	}
}

// PaymentForm handles GET /payment. The exam list fills the select.
func PaymentForm(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := d.page(r, "Payment verification")
		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "student/payment", p, err)
			return
		}
		exams, err := client.Exams(r.Context())
		if err != nil {
			d.fail(w, r, "student/payment", p, err)
			return
		}
		p.Data = exams
		d.View.Render(w, http.StatusOK, "student/payment", p)
	}
}

// VerifyPayment handles POST /payment.
func VerifyPayment(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pv := types.PaymentVerification{
			ExamID:    page.FormInt(r, "exam_id"),
			Reference: page.Form(r, "reference"),
		}
		p := d.page(r, "Payment verification")
		p.Form = pv

		client, err := d.client(r)
		if err != nil {
			d.fail(w, r, "student/payment", p, err)
			return
		}
		// The select needs the exams even when verification fails.
		if exams, err := client.Exams(r.Context()); err == nil {
			p.Data = exams
		}

		res, err := client.VerifyPayment(r.Context(), pv)
		if err != nil {
			d.fail(w, r, "student/payment", p, err)
			return
		}

		slog.Info("payment verification",
			slog.Int64("exam_id", pv.ExamID),
			slog.Bool("verified", res.Verified))

		switch {
		case res.Verified:
			p.Notice = "Payment verified."
			if res.Message != "" {
				p.Notice = res.Message
			}
			p.Form = nil
		case res.Message != "":
			p.Error = res.Message
		default:
			p.Error = "The payment could not be verified."
		}
		d.View.Render(w, http.StatusOK, "student/payment", p)
	}
}
