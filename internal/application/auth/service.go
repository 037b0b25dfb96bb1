package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/infrastructure/realtime"
	"github.com/go-referral-api/internal/pkg/id"
	pkgtoken "github.com/go-referral-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpTTL = 10 * time.Minute
	// otpPurgeAfter is when DynamoDB TTL may drop the record, well after expiry.
	otpPurgeAfter = 24 * time.Hour

	referralCodeLen         = 8
	referralCodeAttempts    = 5
	referralCodeFallbackLen = 12
)

type RegisterRequest struct {
	FullName        string `json:"fullName" validate:"required,fullname"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone"`
	Password        string `json:"password" validate:"required,pin"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	ReferralCode    string `json:"referralCode"`
	Role            string `json:"role" validate:"omitempty,oneof=user admin"`
}

type VerifyOTPRequest struct {
	Email   string `json:"email" validate:"required,email"`
	OtpCode string `json:"otpCode" validate:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Otp      string `json:"otp" validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,pin"`
}

type VerifyResult struct {
	Token string
	User  *domain.User
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) error
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyResult, error)
	ResendOTP(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByReferralCode(ctx context.Context, code string) (*domain.User, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	SetPasswordHash(ctx context.Context, userID, hash string) error
}

// otpStore keeps at most one record per target; Put replaces it.
type otpStore interface {
	Put(ctx context.Context, o *domain.OtpRecord) error
	Get(ctx context.Context, target string) (*domain.OtpRecord, error)
	RecordAttempt(ctx context.Context, target, otpID string, limit int) error
	MarkUsed(ctx context.Context, target, otpID string) error
}

type registrationStore interface {
	Commit(ctx context.Context, c *domain.RegistrationCascade) error
}

type referralStore interface {
	Get(ctx context.Context, userID string) (*domain.Referral, error)
}

type sessionRevoker interface {
	DeleteByUser(ctx context.Context, userID string) error
}

type tokenIssuer interface {
	Issue(ctx context.Context, u *domain.User) (string, error)
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type broadcaster interface {
	Publish(ctx context.Context, userID string, ev realtime.Event) error
}

type service struct {
	users            userStore
	otps             otpStore
	registrations    registrationStore
	referrals        referralStore
	sessions         sessionRevoker
	issuer           tokenIssuer
	mailer           mailer
	sms              smsSender
	events           broadcaster
	frontendURL      string
	allowAdminSignup bool
	now              func() time.Time
}

type ServiceDeps struct {
	UserRepo         userStore
	OtpRepo          otpStore
	RegistrationRepo registrationStore
	ReferralRepo     referralStore
	SessionRepo      sessionRevoker
	TokenIssuer      tokenIssuer
	Mailer           mailer
	SMSSender        smsSender // nil disables referrer SMS
	Broadcaster      broadcaster
	FrontendURL      string
	AllowAdminSignup bool
	Now              func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:            deps.UserRepo,
		otps:             deps.OtpRepo,
		registrations:    deps.RegistrationRepo,
		referrals:        deps.ReferralRepo,
		sessions:         deps.SessionRepo,
		issuer:           deps.TokenIssuer,
		mailer:           deps.Mailer,
		sms:              deps.SMSSender,
		events:           deps.Broadcaster,
		frontendURL:      strings.TrimRight(deps.FrontendURL, "/"),
		allowAdminSignup: deps.AllowAdminSignup,
		now:              now,
	}
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (s *service) Register(ctx context.Context, req RegisterRequest) error {
	email := normalizeEmail(req.Email)
	if req.Role == domain.RoleAdmin && !s.allowAdminSignup {
		return fmt.Errorf("admin accounts cannot self-register: %w", domain.ErrForbidden)
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	payload := &domain.PendingRegistration{
		Name:         strings.TrimSpace(req.FullName),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		ReferralCode: strings.ToUpper(strings.TrimSpace(req.ReferralCode)),
		Role:         req.Role,
	}
	return s.issueOtp(ctx, email, domain.OtpPurposeRegister, payload, "Your OTP Code")
}

// issueOtp stores a fresh code for target, replacing any earlier one, and mails it.
func (s *service) issueOtp(ctx context.Context, target, purpose string, payload *domain.PendingRegistration, subject string) error {
	code, err := pkgtoken.NewOTP()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	otpID := id.New()
	rec := &domain.OtpRecord{
		Target:    target,
		OtpID:     otpID,
		CodeHash:  pkgtoken.OTPHash(target, otpID, code),
		Purpose:   purpose,
		ExpiresAt: now.Add(otpTTL),
		UserData:  payload,
		PurgeAt:   now.Add(otpPurgeAfter).Unix(),
		CreatedAt: now,
	}
	if err := s.otps.Put(ctx, rec); err != nil {
		return err
	}
	return s.mailer.SendEmail(ctx, target, subject, otpEmailBody(code, purpose))
}

func (s *service) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrEmailAlreadyExists
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

// checkOtp spends one attempt on the pending record before comparing codes,
// so no record ever has more than MaxOtpAttempts codes checked against it.
func (s *service) checkOtp(ctx context.Context, target, code, purpose string) (*domain.OtpRecord, error) {
	rec, err := s.otps.Get(ctx, target)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidOtp
	}
	if err != nil {
		return nil, err
	}
	if rec.Used || rec.Purpose != purpose {
		return nil, domain.ErrInvalidOtp
	}
	if rec.Locked() {
		return nil, domain.ErrOtpLocked
	}
	if err := s.otps.RecordAttempt(ctx, target, rec.OtpID, domain.MaxOtpAttempts); err != nil {
		return nil, err
	}
	want := pkgtoken.OTPHash(target, rec.OtpID, code)
	if subtle.ConstantTimeCompare([]byte(rec.CodeHash), []byte(want)) != 1 {
		return nil, domain.ErrInvalidOtp
	}
	if rec.Expired(s.now()) {
		return nil, domain.ErrExpiredOtp
	}
	return rec, nil
}

func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyResult, error) {
	email := normalizeEmail(req.Email)
	rec, err := s.checkOtp(ctx, email, req.OtpCode, domain.OtpPurposeRegister)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if rec.UserData == nil {
		return nil, domain.ErrInvalidOtp
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	code, err := s.allocateReferralCode(ctx)
	if err != nil {
		return nil, err
	}
	p := rec.UserData
	role := p.Role
	if role == "" {
		role = domain.RoleUser
	}
	u := &domain.User{
		UserID:       id.New(),
		Name:         p.Name,
		Email:        email,
		Phone:        p.Phone,
		PasswordHash: p.PasswordHash,
		ReferralCode: code,
		Role:         role,
		Status:       domain.UserStatusVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	cascade := &domain.RegistrationCascade{
		Otp:  rec,
		User: u,
		Referral: &domain.Referral{
			UserID:       u.UserID,
			ReferralCode: code,
			ReferralLink: fmt.Sprintf("%s/register?ref=%s", s.frontendURL, code),
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	referrer, err := s.resolveReferrer(ctx, p.ReferralCode)
	if err != nil {
		return nil, err
	}
	if referrer != nil {
		u.ReferredBy = p.ReferralCode
		if _, err := s.referrals.Get(ctx, referrer.UserID); err == nil {
			cascade.Reward = rewardFor(referrer, u, now)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	if err := s.registrations.Commit(ctx, cascade); err != nil {
		return nil, err
	}
	if cascade.Reward != nil {
		s.notifyReferrer(ctx, referrer, cascade.Reward)
	}

	tok, err := s.issuer.Issue(ctx, u)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Token: tok, User: u}, nil
}

func (s *service) resolveReferrer(ctx context.Context, code string) (*domain.User, error) {
	if code == "" {
		return nil, nil
	}
	ref, err := s.users.GetByReferralCode(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return ref, err
}

func rewardFor(referrer, newUser *domain.User, now time.Time) *domain.RewardCredit {
	return &domain.RewardCredit{
		ReferrerID: referrer.UserID,
		ReferredID: newUser.UserID,
		Entry: domain.ReferralEntry{
			Name:     newUser.Name,
			Avatar:   avatar(newUser.Name),
			JoinDate: now,
			Status:   domain.ReferralStatusPaid,
			Earnings: domain.ReferralReward,
		},
		Transaction: &domain.WalletTransaction{
			TxnID:       id.New(),
			UserID:      referrer.UserID,
			Amount:      domain.ReferralReward,
			Source:      domain.TxnSourceReferral,
			Description: "Referral reward for inviting " + newUser.Name,
			Reference:   newUser.UserID,
			CreatedAt:   now,
		},
	}
}

func avatar(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1])
}

// notifyReferrer runs after commit; failures are logged and never surface.
func (s *service) notifyReferrer(ctx context.Context, referrer *domain.User, rc *domain.RewardCredit) {
	update := domain.ReferralUpdate{Entry: rc.Entry}
	if ref, err := s.referrals.Get(ctx, referrer.UserID); err == nil {
		update.TotalReferrals = ref.TotalReferrals
		update.PaidReferrals = ref.PaidReferrals
		update.TotalEarnings = ref.TotalEarnings
	} else {
		slog.Warn("could not reload referral ledger", "user_id", referrer.UserID, "err", err)
	}
	if s.events != nil {
		ev, err := realtime.NewEvent(realtime.EventReferralUpdate, update)
		if err == nil {
			err = s.events.Publish(ctx, referrer.UserID, ev)
		}
		if err != nil {
			slog.Warn("referral update not published", "user_id", referrer.UserID, "err", err)
		}
	}
	if s.sms != nil && referrer.Phone != "" {
		msg := fmt.Sprintf("You earned Rs %s: %s joined with your referral code.", rc.Entry.Earnings, rc.Entry.Name)
		if err := s.sms.SendSMS(ctx, referrer.Phone, msg); err != nil {
			slog.Warn("referral sms failed", "user_id", referrer.UserID, "err", err)
		}
	}
}

// allocateReferralCode tries a few short codes, then one long code. A
// collision on the long code is reported instead of looping forever.
func (s *service) allocateReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < referralCodeAttempts; i++ {
		code, err := pkgtoken.NewReferralCode(referralCodeLen)
		if err != nil {
			return "", err
		}
		taken, err := s.users.ReferralCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	code, err := pkgtoken.NewReferralCode(referralCodeFallbackLen)
	if err != nil {
		return "", err
	}
	taken, err := s.users.ReferralCodeExists(ctx, code)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("could not allocate a referral code: %w", domain.ErrConflict)
	}
	return code, nil
}

func (s *service) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	prev, err := s.otps.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no pending registration for %s: %w", email, domain.ErrNotFound)
		}
		return err
	}
	if prev.Purpose != domain.OtpPurposeRegister || prev.UserData == nil {
		return fmt.Errorf("no pending registration for %s: %w", email, domain.ErrNotFound)
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return err
	}
	return s.issueOtp(ctx, email, domain.OtpPurposeRegister, prev.UserData, "New OTP Code")
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return err
	}
	return s.issueOtp(ctx, email, domain.OtpPurposeReset, nil, "Password Reset OTP")
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	rec, err := s.checkOtp(ctx, email, req.Otp, domain.OtpPurposeReset)
	if err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.otps.MarkUsed(ctx, rec.Target, rec.OtpID); err != nil {
		return err
	}
	if err := s.users.SetPasswordHash(ctx, u.UserID, string(hash)); err != nil {
		return err
	}
	if err := s.sessions.DeleteByUser(ctx, u.UserID); err != nil {
		slog.Warn("could not revoke sessions after password reset", "user_id", u.UserID, "err", err)
	}
	return nil
}
