package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrCardCodeExists     = errors.New("a user with this card code already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrCardScanDisabled   = errors.New("card scan login is disabled")
	ErrLockedOut          = errors.New("too many failed login attempts, try again later")
)

type (
	Repository interface {
		// CheckUniqueness returns ErrEmailExists or ErrCardCodeExists when another user holds them.
		CheckUniqueness(ctx context.Context, email, cardCode string, excludedUsers ...User) error
		Create(ctx context.Context, usr User) (User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetByCardCode(ctx context.Context, code string) (User, error)
		QueryByGym(ctx context.Context, gymID int) ([]User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		SetPassword(ctx context.Context, usr User) error
	}

	// LoginLimiter counts failed logins per key and refuses further attempts once exhausted.
	LoginLimiter interface {
		Allowed(ctx context.Context, key string) (bool, error)
		Failed(ctx context.Context, key string) error
		Reset(ctx context.Context, key string) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, email, cardCode string, exclUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		QueryByGym(ctx context.Context, gymID int) ([]User, error)
		// Authenticate checks `login` (card code or email) and password.
		Authenticate(ctx context.Context, login, pwd string) (User, error)
		// AuthenticateCard logs in with the card code alone (front-desk card scanner).
		AuthenticateCard(ctx context.Context, cardCode string) (User, error)
		SetPassword(ctx context.Context, usr User, pwd string) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error
	}

	service struct {
		repo     Repository
		limiter  LoginLimiter
		mailSvc  core.EmailService
		logger   core.Logger
		tokens   tokenGenerator
		cardScan bool
	}
)

func NewService(
	repo Repository,
	limiter LoginLimiter,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &service{
		repo:     repo,
		limiter:  limiter,
		mailSvc:  mailSvc,
		logger:   logger,
		tokens:   newTokenGenerator(conf.SecretKey, conf.PasswordResetTimeoutDelta),
		cardScan: conf.Server.CardScanLogin,
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, email, cardCode string, exclUsers ...User) error {
	if err := svc.repo.CheckUniqueness(ctx, email, cardCode, exclUsers...); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrEmailExists:
			field = "email"
		case ErrCardCodeExists:
			field = "card_code"
		default:
			return errors.Wrap(err, "checking uniqueness")
		}
		return core.NewFieldError(field, err)
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		GymID:     nu.GymID,
		Name:      nu.Name,
		Email:     nu.Email,
		CardCode:  nu.CardCode,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: NowFunc().UTC(),
	}
	if usr.CardCode == "" {
		usr.CardCode = NewCardCode()
	}
	if usr.Role == "" {
		usr.Role = RoleAdmin
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.Create(ctx, usr)
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) QueryByGym(ctx context.Context, gymID int) ([]User, error) {
	return svc.repo.QueryByGym(ctx, gymID)
}

func (svc *service) getByLogin(ctx context.Context, login string) (User, error) {
	login = core.CleanString(login)
	if strings.Contains(login, "@") {
		return svc.repo.GetByEmail(ctx, strings.ToLower(login))
	}
	return svc.repo.GetByCardCode(ctx, login)
}

func (svc *service) Authenticate(ctx context.Context, login, pwd string) (User, error) {
	key := core.CleanString(login, true /* lower */)
	if err := svc.checkLimiter(ctx, key); err != nil {
		return User{}, err
	}

	usr, err := svc.getByLogin(ctx, login)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, svc.loginFailed(ctx, key)
		}
		return User{}, errors.Wrap(err, "finding user by card code or email")
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, svc.loginFailed(ctx, key)
	}
	return svc.loggedIn(ctx, key, usr)
}

func (svc *service) AuthenticateCard(ctx context.Context, cardCode string) (User, error) {
	if !svc.cardScan {
		return User{}, ErrCardScanDisabled
	}
	key := core.CleanString(cardCode, true /* lower */)
	if err := svc.checkLimiter(ctx, key); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.GetByCardCode(ctx, core.CleanString(cardCode))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, svc.loginFailed(ctx, key)
		}
		return User{}, errors.Wrap(err, "finding user by card code")
	}
	return svc.loggedIn(ctx, key, usr)
}

func (svc *service) checkLimiter(ctx context.Context, key string) error {
	ok, err := svc.limiter.Allowed(ctx, key)
	if err != nil {
		return errors.Wrap(err, "checking login limiter")
	}
	if !ok {
		return ErrLockedOut
	}
	return nil
}

func (svc *service) loginFailed(ctx context.Context, key string) error {
	if err := svc.limiter.Failed(ctx, key); err != nil {
		svc.logger.Error("recording failed login", err, map[string]interface{}{"key": key})
	}
	return ErrInvalidCredentials
}

func (svc *service) loggedIn(ctx context.Context, key string, usr User) (User, error) {
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	if err := svc.limiter.Reset(ctx, key); err != nil {
		svc.logger.Error("resetting login limiter", err, map[string]interface{}{"key": key})
	}
	now := NowFunc().UTC()
	usr.LastLogin = &now
	usr, err := svc.repo.SetLastLogin(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

func (svc *service) SetPassword(ctx context.Context, usr User, pwd string) error {
	if err := usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetPassword(ctx, usr)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrAccountDeactivated
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) sendPasswordResetMail(usr User) {
	token, err := svc.tokens.makeToken(usr)
	if err != nil {
		svc.logger.Error("making password reset token", err, usr)
		return
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]interface{}{
			"Name":  usr.Name,
			"UID":   EncodeUID(usr),
			"Token": token,
		},
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	id, err := decodeUID(data.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err := svc.tokens.verifyToken(usr, data.Token); err != nil {
		return core.NewValidationError(err)
	}
	if tag := checkPassword(data.Password, usr.Name, usr.Email, usr.CardCode); tag != "" {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: passwordPolicyTexts[tag]})
	}
	return svc.SetPassword(ctx, usr, data.Password)
}

// NewCardCode generates an admin card code: "ADM" followed by 8 uppercase hex characters.
func NewCardCode() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return "ADM" + strings.ToUpper(hex.EncodeToString(b))
}

// NewPassword generates a random url-safe password of 16 characters.
func NewPassword() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
