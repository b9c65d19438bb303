package main

import (
	"bufio"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/claude/titanfit/internal/api"
	"github.com/claude/titanfit/internal/models"
)

var (
	memberSignup models.MemberSignup
	memberWeight float64
	memberVideo  string

	ownerSignup  models.GymOwnerSignup
	ownerAddress string
	ownerCity    string
)

func newSignupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Request a member account or register as a gym owner",
	}
	cmd.AddCommand(newSignupMemberCmd())
	cmd.AddCommand(newSignupOwnerCmd())
	return cmd
}

func newSignupMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Ask to join a gym; an owner reviews the request",
		Args:  cobra.NoArgs,
		RunE:  runSignupMemberCmd,
	}
	f := cmd.Flags()
	f.StringVar(&memberSignup.GymID, "gym", "", "gym id to join (required)")
	f.StringVar(&memberSignup.Username, "username", "", "username (required)")
	f.StringVar(&memberSignup.Email, "email", "", "account email (required)")
	f.Float64Var(&memberSignup.HeightCm, "height", 0, "height in cm (required)")
	f.Float64Var(&memberWeight, "weight", 0, "weight in kg")
	f.StringVar(&memberSignup.FirstName, "first-name", "", "first name")
	f.StringVar(&memberSignup.LastName, "last-name", "", "last name")
	f.StringVar(&memberSignup.Phone, "phone", "", "phone number")
	f.StringVar(&memberSignup.Gender, "gender", "", "gender")
	f.StringVar(&memberSignup.DateOfBirth, "dob", "", "date of birth, YYYY-MM-DD")
	f.StringVar(&memberVideo, "video", "", "face video file (required)")
	return cmd
}

func runSignupMemberCmd(cmd *cobra.Command, _ []string) error {
	if memberVideo == "" {
		return errors.New("a face video is required, pass --video")
	}
	s := memberSignup
	if cmd.Flags().Changed("weight") {
		s.WeightKg = models.OptFloat{Value: memberWeight, Valid: true}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if s.Password, err = readPassword(bufio.NewReader(cmd.InOrStdin()), out); err != nil {
		return err
	}

	video, err := os.Open(memberVideo)
	if err != nil {
		return fmt.Errorf("failed to open video: %w", err)
	}
	defer video.Close()

	resp, err := a.client.SignupMember(cmd.Context(), s, api.Video{
		Name:        filepath.Base(memberVideo),
		ContentType: mime.TypeByExtension(filepath.Ext(memberVideo)),
		Data:        video,
	})
	if err != nil {
		return signupError(err)
	}
	a.log.Debug("member signup submitted", "request_id", resp.RequestID)
	_, err = fmt.Fprintln(out, "Signup request submitted. A gym owner will review and approve your account.")
	return err
}

func newSignupOwnerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "owner",
		Short: "Register as a gym owner for an existing or new gym",
		Long: "Register as a gym owner. Pass --gym to join an existing gym, " +
			"or --gym-name with --address and --city to create a new one.",
		Args: cobra.NoArgs,
		RunE: runSignupOwnerCmd,
	}
	f := cmd.Flags()
	f.StringVar(&ownerSignup.Email, "email", "", "account email (required)")
	f.StringVar(&ownerSignup.FullName, "name", "", "full name (required)")
	f.StringVar(&ownerSignup.GymID, "gym", "", "existing gym id to join")
	f.StringVar(&ownerSignup.GymName, "gym-name", "", "name of a new gym")
	f.StringVar(&ownerAddress, "address", "", "street address of the new gym")
	f.StringVar(&ownerCity, "city", "", "city of the new gym")
	cmd.MarkFlagsMutuallyExclusive("gym", "gym-name")
	cmd.MarkFlagsOneRequired("gym", "gym-name")
	return cmd
}

func runSignupOwnerCmd(cmd *cobra.Command, _ []string) error {
	s := ownerSignup
	if s.GymID == "" {
		s.Location = &models.GymLocation{Address: ownerAddress, City: ownerCity}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if s.Password, err = readPassword(bufio.NewReader(cmd.InOrStdin()), out); err != nil {
		return err
	}

	resp, err := a.client.SignupGymOwner(cmd.Context(), s)
	if err != nil {
		return signupError(err)
	}
	a.log.Debug("gym owner registered", "mode", s.Mode(), "owner_id", resp.OwnerID)
	_, err = fmt.Fprintln(out, "Gym owner account created successfully. Please log in to continue.")
	return err
}

// signupError leaves local validation failures unprefixed.
func signupError(err error) error {
	if errors.Is(err, api.ErrInvalidSignup) {
		return err
	}
	return fmt.Errorf("signup failed: %w", err)
}
