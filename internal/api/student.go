package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aanand-mishra/ugs-portal/internal/types"
	"github.com/aanand-mishra/ugs-portal/internal/validation"
)

// Student calls the student-facing endpoints on behalf of one browser
// profile. Register and Login are public calls that store the returned token.
type Student struct {
	c      *Client
	tokens TokenStore
}

func NewStudent(baseURL string, httpClient *http.Client, tokens TokenStore) *Student {
	return &Student{c: New(baseURL, httpClient, tokens), tokens: tokens}
}

// raw performs the call and returns the untouched JSON body.
func (c *Client) raw(ctx context.Context, req Request) ([]byte, error) {
	var body json.RawMessage
	if err := c.Do(ctx, req, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkPayload validates v before it is sent; failures look exactly like a
// 422 from the API.
func checkPayload(v any) error {
	fields, err := validation.Struct(v)
	if err != nil {
		return fmt.Errorf("api: validate payload: %w", err)
	}
	if fields != nil {
		return &Error{
			Status:  http.StatusUnprocessableEntity,
			Message: "The given data was invalid.",
			Errors:  fields,
		}
	}
	return nil
}

func authenticate(ctx context.Context, c *Client, tokens TokenStore, path string, payload any) (AuthResult, error) {
	if err := checkPayload(payload); err != nil {
		return AuthResult{}, err
	}
	data, err := c.raw(ctx, Request{Method: http.MethodPost, Path: path, Body: payload, NoAuth: true})
	if err != nil {
		return AuthResult{}, err
	}
	res, err := DecodeAuth(data)
	if err != nil {
		return AuthResult{}, err
	}
	if tokens != nil {
		if err := tokens.Set(ctx, res.Token); err != nil {
			return AuthResult{}, err
		}
	}
	return res, nil
}

func (s *Student) Register(ctx context.Context, reg types.Registration) (AuthResult, error) {
	return authenticate(ctx, s.c, s.tokens, "/register", reg)
}

func (s *Student) Login(ctx context.Context, creds types.Credentials) (AuthResult, error) {
	return authenticate(ctx, s.c, s.tokens, "/login", creds)
}

// Logout tells the API to revoke the token. It does not touch the stored
// token; the auth session does that.
func (s *Student) Logout(ctx context.Context) error {
	return s.c.Do(ctx, Request{Method: http.MethodPost, Path: "/logout"}, nil)
}

// CurrentUser is the student "whoami" call.
func (s *Student) CurrentUser(ctx context.Context) (types.User, error) {
	data, err := s.c.raw(ctx, Request{Path: "/user"})
	if err != nil {
		return types.User{}, err
	}
	return DecodeUser(data)
}

func (s *Student) Profile(ctx context.Context) (types.User, error) {
	data, err := s.c.raw(ctx, Request{Path: "/profile"})
	if err != nil {
		return types.User{}, err
	}
	return DecodeUser(data)
}

func (s *Student) UpdateProfile(ctx context.Context, upd types.ProfileUpdate) (types.User, error) {
	if err := checkPayload(upd); err != nil {
		return types.User{}, err
	}
	data, err := s.c.raw(ctx, Request{Method: http.MethodPut, Path: "/profile", Body: upd})
	if err != nil {
		return types.User{}, err
	}
	return DecodeUser(data)
}

func (s *Student) ChangePassword(ctx context.Context, pc types.PasswordChange) error {
	if err := checkPayload(pc); err != nil {
		return err
	}
	return s.c.Do(ctx, Request{Method: http.MethodPut, Path: "/profile/password", Body: pc}, nil)
}

func (s *Student) VerifyPayment(ctx context.Context, pv types.PaymentVerification) (types.PaymentResult, error) {
	if err := checkPayload(pv); err != nil {
		return types.PaymentResult{}, err
	}
	var res types.PaymentResult
	if err := s.c.Do(ctx, Request{Method: http.MethodPost, Path: "/payment/verify", Body: pv}, &res); err != nil {
		return types.PaymentResult{}, err
	}
	return res, nil
}

func (s *Student) Exams(ctx context.Context) ([]types.Exam, error) {
	return list[types.Exam](ctx, s.c, "/exams")
}

func (s *Student) Announcements(ctx context.Context) ([]types.Announcement, error) {
	return list[types.Announcement](ctx, s.c, "/announcements")
}

func (s *Student) MyExams(ctx context.Context) ([]types.MyExam, error) {
	return list[types.MyExam](ctx, s.c, "/my-exams")
}

func (s *Student) ExamDates(ctx context.Context) ([]types.ExamDate, error) {
	return list[types.ExamDate](ctx, s.c, "/exam-dates")
}

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	data, err := c.raw(ctx, Request{Path: path})
	if err != nil {
		return nil, err
	}
	return DecodeList[T](data)
}

func record[T any](ctx context.Context, c *Client, req Request) (T, error) {
	data, err := c.raw(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeRecord[T](data)
}
