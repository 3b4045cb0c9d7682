package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brunogcp/SafeGuard/internal/apperr"
	"github.com/brunogcp/SafeGuard/internal/crypto"
	"github.com/brunogcp/SafeGuard/internal/db/models"
	"github.com/brunogcp/SafeGuard/internal/mail"
	"github.com/brunogcp/SafeGuard/internal/token"
	"github.com/brunogcp/SafeGuard/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const otpMailSubject = "Your SafeGuard verification code"

// AuthService runs the two-phase login: password check followed by an OTP
// challenge delivered over email. Session tokens are only issued after the
// challenge completes.
type AuthService struct {
	db      *gorm.DB
	mailer  mail.Mailer
	issuer  *token.Issuer
	logger  *zap.Logger
	metrics *metrics.MetricsCollector
	now     func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	mailer mail.Mailer,
	issuer *token.Issuer,
	logger *zap.Logger,
	metricsCollector *metrics.MetricsCollector,
) *AuthService {
	return &AuthService{
		db:      db,
		mailer:  mailer,
		issuer:  issuer,
		logger:  logger.With(zap.String("service", "auth_service")),
		metrics: metricsCollector,
		now:     time.Now,
	}
}

// Register creates a user with a bcrypt password hash. The hash and the OTP
// secret never leave this layer.
func (as *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var existing models.User
	if err := as.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, apperr.Invalid("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := as.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}

	as.logger.Info("User registered", zap.String("email", email), zap.Uint("user_id", user.ID))
	return user, nil
}

// Login validates the password, then generates a fresh OTP secret, persists
// it and mails the code. The order matters: the secret must be durable
// before the code leaves the building, or a delivered code could never
// verify. The caller gets an acknowledgement only, never the code.
func (as *AuthService) Login(ctx context.Context, email, password string) error {
	user, err := as.findUser(ctx, email)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		as.metrics.IncrementCounter("login_failed", nil)
		as.logger.Warn("Invalid password", zap.String("email", email))
		return apperr.Unauthorized("invalid credentials")
	}

	secret, otpToken, err := crypto.GenerateOtp(as.now())
	if err != nil {
		return err
	}

	if err := as.db.WithContext(ctx).Model(user).Update("otp_secret", secret).Error; err != nil {
		return fmt.Errorf("persist otp secret: %w", err)
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		otpToken, int(crypto.OtpStep.Minutes()))
	if err := as.mailer.Send(user.Email, otpMailSubject, body); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "could not deliver verification code", err)
	}

	as.metrics.IncrementCounter("otp_challenges_sent", nil)
	as.logger.Info("OTP challenge dispatched", zap.Uint("user_id", user.ID))
	return nil
}

// VerifyOtp completes the challenge. On success the stored secret is cleared
// so a code cannot be replayed in a later window, and a signed session token
// is issued. Failures never reveal whether the email exists or the code was
// wrong.
func (as *AuthService) VerifyOtp(ctx context.Context, email, otpToken string) (string, error) {
	user, err := as.findUser(ctx, email)
	if err != nil {
		return "", err
	}

	if user.OtpSecret == nil || !crypto.VerifyOtp(*user.OtpSecret, otpToken, as.now()) {
		as.metrics.IncrementCounter("otp_failed", nil)
		as.logger.Warn("OTP verification failed", zap.Uint("user_id", user.ID))
		return "", apperr.Unauthorized("invalid credentials")
	}

	if err := as.db.WithContext(ctx).Model(user).Update("otp_secret", nil).Error; err != nil {
		return "", fmt.Errorf("rotate otp secret: %w", err)
	}

	accessToken, err := as.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return "", err
	}

	as.metrics.IncrementCounter("logins_completed", nil)
	as.logger.Info("Login completed", zap.Uint("user_id", user.ID))
	return accessToken, nil
}

// findUser maps an unknown email onto the same Unauthorized failure as a bad
// credential.
func (as *AuthService) findUser(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := as.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	return &user, nil
}
