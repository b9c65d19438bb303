package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/claude/titanfit/internal/models"
)

// ErrInvalidSignup marks a signup rejected locally before anything is sent.
var ErrInvalidSignup = errors.New("invalid signup")

// Video is the face video a member records for the gym owner to review.
type Video struct {
	Name        string
	ContentType string // default video/mp4
	Data        io.Reader
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSignup, msg)
}

// CheckMemberSignup applies the signup form rules to a trimmed request.
func CheckMemberSignup(s models.MemberSignup) error {
	switch {
	case s.GymID == "":
		return invalid("gym id is required")
	case utf8.RuneCountInString(s.Username) < 3:
		return invalid("username must be at least 3 characters")
	case !ValidEmail(s.Email):
		return invalid("please enter a valid email address")
	case len(strings.TrimSpace(s.Password)) < 6:
		return invalid("password must be at least 6 characters")
	case !positive(s.HeightCm):
		return invalid("height must be a positive number")
	case s.WeightKg.Valid && !positive(s.WeightKg.Value):
		return invalid("weight must be a valid number")
	}
	if s.DateOfBirth != "" {
		if _, err := time.Parse(models.DayLayout, s.DateOfBirth); err != nil {
			return invalid("date of birth must be in YYYY-MM-DD format")
		}
	}
	return nil
}

// CheckGymOwnerSignup applies the owner form rules for either mode.
func CheckGymOwnerSignup(s models.GymOwnerSignup) error {
	switch {
	case !ValidEmail(s.Email):
		return invalid("please enter a valid email address")
	case utf8.RuneCountInString(s.FullName) < 2:
		return invalid("full name must be at least 2 characters")
	case len(strings.TrimSpace(s.Password)) < 6:
		return invalid("password must be at least 6 characters")
	}
	if s.Mode() == models.OwnerJoinExisting {
		if s.GymName != "" || s.Location != nil {
			return invalid("joining an existing gym takes only a gym id")
		}
		return nil
	}
	if utf8.RuneCountInString(s.GymName) < 2 {
		return invalid("gym name must be at least 2 characters")
	}
	if s.Location == nil || utf8.RuneCountInString(s.Location.Address) < 2 ||
		utf8.RuneCountInString(s.Location.City) < 2 {
		return invalid("gym address and city are required")
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func trimMember(s models.MemberSignup) models.MemberSignup {
	s.GymID = strings.TrimSpace(s.GymID)
	s.Username = strings.TrimSpace(s.Username)
	s.Email = strings.TrimSpace(s.Email)
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Gender = strings.TrimSpace(s.Gender)
	s.DateOfBirth = strings.TrimSpace(s.DateOfBirth)
	return s
}

func trimOwner(s models.GymOwnerSignup) models.GymOwnerSignup {
	s.Email = strings.TrimSpace(s.Email)
	s.FullName = strings.TrimSpace(s.FullName)
	s.GymID = strings.TrimSpace(s.GymID)
	s.GymName = strings.TrimSpace(s.GymName)
	if s.Location != nil {
		loc := models.GymLocation{
			Address: strings.TrimSpace(s.Location.Address),
			City:    strings.TrimSpace(s.Location.City),
		}
		s.Location = &loc
	}
	return s
}

// SignupMember submits a member signup with the face video as multipart form data.
// Invalid requests fail with ErrInvalidSignup and nothing is sent.
func (c *Client) SignupMember(ctx context.Context, s models.MemberSignup, video Video) (*models.SignupResponse, error) {
	s = trimMember(s)
	if err := CheckMemberSignup(s); err != nil {
		return nil, err
	}
	if video.Data == nil {
		return nil, invalid("face video is required")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"gym_id", s.GymID},
		{"username", s.Username},
		{"email", s.Email},
		{"password", s.Password},
		{"height_cm", strconv.FormatFloat(s.HeightCm, 'f', -1, 64)},
	}
	if s.WeightKg.Valid {
		fields = append(fields, [2]string{"weight_kg", strconv.FormatFloat(s.WeightKg.Value, 'f', -1, 64)})
	}
	for _, f := range [][2]string{
		{"first_name", s.FirstName},
		{"last_name", s.LastName},
		{"phone", s.Phone},
		{"gender", s.Gender},
		{"date_of_birth", s.DateOfBirth},
	} {
		if f[1] != "" {
			fields = append(fields, f)
		}
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("api: writing signup field %s: %w", f[0], err)
		}
	}
	if err := writeVideo(mw, video); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("api: closing signup form: %w", err)
	}

	const path = "/api/signup/user/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp models.SignupResponse
	if err := c.send(req, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func writeVideo(mw *multipart.Writer, v Video) error {
	name := v.Name
	if name == "" {
		name = fmt.Sprintf("face-%d.mp4", time.Now().UnixMilli())
	}
	ctype := v.ContentType
	if ctype == "" {
		ctype = "video/mp4"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="face_video"; filename=%q`, name))
	h.Set("Content-Type", ctype)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("api: creating video part: %w", err)
	}
	if _, err := io.Copy(part, v.Data); err != nil {
		return fmt.Errorf("api: reading face video: %w", err)
	}
	return nil
}

// SignupGymOwner registers a gym owner who either joins an existing gym or creates one.
// Invalid requests fail with ErrInvalidSignup and nothing is sent.
func (c *Client) SignupGymOwner(ctx context.Context, s models.GymOwnerSignup) (*models.SignupResponse, error) {
	s = trimOwner(s)
	if err := CheckGymOwnerSignup(s); err != nil {
		return nil, err
	}
	var resp models.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/api/signup/gym-owner/", s, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
