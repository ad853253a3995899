package user

import (
	"context"
	"errors"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/imagestore"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// TokenVerifier validates a Google sign-in ID token.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (auth.GoogleProfile, error)
}

type Service struct {
	repo   Repository
	issuer *auth.Issuer
	images imagestore.Store
	google TokenVerifier
	log    zerolog.Logger
	cost   int
}

func NewService(repo Repository, issuer *auth.Issuer, images imagestore.Store, log zerolog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, images: images, log: log, cost: bcrypt.DefaultCost}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return User{}, apperr.Validation("name, email and password are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return User{}, apperr.Validation("email is not valid")
	}
	if len(in.Password) < minPasswordLength {
		return User{}, apperr.Validation("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, err
	}
	created, err := s.repo.Create(ctx, User{Name: in.Name, Email: in.Email, Password: string(hashed), Role: auth.RoleUser})
	if err != nil {
		return User{}, err
	}
	return sanitizeUser(created), nil
}

// Login checks the credentials and signs a token for the user.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, "", ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return User{}, "", err
	}
	return sanitizeUser(user), token, nil
}

// WithGoogle enables GoogleLogin.
func (s *Service) WithGoogle(v TokenVerifier) *Service {
	s.google = v
	return s
}

// GoogleLogin signs in the owner of a verified Google ID token, creating a
// user account for an email seen for the first time.
func (s *Service) GoogleLogin(ctx context.Context, idToken string) (User, string, error) {
	if s.google == nil {
		return User{}, "", apperr.External("google sign-in", errors.New("not configured"))
	}
	if strings.TrimSpace(idToken) == "" {
		return User{}, "", apperr.Validation("idToken is required")
	}
	profile, err := s.google.Verify(ctx, idToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("google token rejected")
		return User{}, "", apperr.Unauthorized("invalid google token")
	}
	email := strings.ToLower(profile.Email)
	if email == "" {
		return User{}, "", apperr.Unauthorized("google account has no email")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		user, err = s.createGoogleUser(ctx, email, profile)
	}
	if err != nil {
		return User{}, "", err
	}
	token, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return User{}, "", err
	}
	return sanitizeUser(user), token, nil
}

// createGoogleUser stores an unguessable password hash; the account signs in through Google only.
func (s *Service) createGoogleUser(ctx context.Context, email string, profile auth.GoogleProfile) (User, error) {
	name := profile.Name
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.cost)
	if err != nil {
		return User{}, err
	}
	u := User{Name: name, Email: email, Password: string(hashed), Role: auth.RoleUser}
	if profile.Picture != "" {
		u.Avatar = &imagestore.Image{URL: profile.Picture}
	}
	created, err := s.repo.Create(ctx, u)
	if errors.Is(err, ErrEmailExists) {
		// a concurrent sign-in created it first
		return s.repo.GetByEmail(ctx, email)
	}
	return created, err
}

func (s *Service) Profile(ctx context.Context, id int) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	return sanitizeUser(user), nil
}

// CurrentRole is the stored role, checked on every authenticated request.
func (s *Service) CurrentRole(ctx context.Context, id int) (string, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// DisplayName is the name shown next to the user's reviews.
func (s *Service) DisplayName(ctx context.Context, id int) (string, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id int, name string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, apperr.Validation("name is required")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	user.Name = name
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return User{}, err
	}
	return sanitizeUser(updated), nil
}

// SetAvatar uploads file and swaps it in; the previous avatar is removed best-effort.
func (s *Service) SetAvatar(ctx context.Context, id int, file *multipart.FileHeader) (User, error) {
	if file == nil {
		return User{}, apperr.Validation("file is required")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	uploaded, err := imagestore.UploadFiles(ctx, s.images, s.log, "avatars", []*multipart.FileHeader{file})
	if err != nil {
		return User{}, err
	}
	old := user.Avatar
	user.Avatar = &uploaded[0]
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		imagestore.DeleteBestEffort(ctx, s.images, s.log, uploaded.PublicIDs()...)
		return User{}, err
	}
	if old != nil {
		imagestore.DeleteBestEffort(ctx, s.images, s.log, old.PublicID)
	}
	return sanitizeUser(updated), nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = sanitizeUser(users[i])
	}
	return users, nil
}

func (s *Service) SetRole(ctx context.Context, id int, role string) (User, error) {
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return User{}, apperr.Validation("role must be %q or %q", auth.RoleUser, auth.RoleAdmin)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	user.Role = role
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return User{}, err
	}
	return sanitizeUser(updated), nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if user.Avatar != nil {
		imagestore.DeleteBestEffort(ctx, s.images, s.log, user.Avatar.PublicID)
	}
	return nil
}
