package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")

	orderingFields = []string{"username", "name", "email", "created_at", "last_login"}
)

type (
	Repository interface {
		// CheckUniqueness returns ErrUsernameExists or ErrEmailExists when another user
		// (other than excludedUsername) already uses them. Empty emails are not compared.
		CheckUniqueness(ctx context.Context, username, email, excludedUsername string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, username string) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Username or User.Email.
		// Users are ordered by username unless orderings are given.
		QueryUsers(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		// DeleteUser also deletes all the marks of the user.
		DeleteUser(ctx context.Context, username string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname, email string, excluded ...string) error {
	var excl string
	if len(excluded) > 0 {
		excl = excluded[0]
	}
	if err := svc.repo.CheckUniqueness(ctx, uname, email, excl); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return errors.Wrap(err, "checking uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Username:  nu.Username,
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) Get(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]User, error) {
	filter.Clean()
	return svc.repo.QueryUsers(ctx, filter, core.CleanOrderings(orderings, orderingFields...))
}

// Students returns the roster: every student, ordered by username.
func (svc *Service) Students(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsers(ctx, QueryFilter{Role: RoleStudent}, nil)
}

// GetStudent is Get restricted to students.
func (svc *Service) GetStudent(ctx context.Context, uname string) (User, error) {
	usr, err := svc.Get(ctx, uname)
	if err != nil {
		return User{}, err
	}
	if !usr.IsStudent() {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (svc *Service) Update(ctx context.Context, uname string, uu UpdateUser) (User, error) {
	usr, err := svc.Get(ctx, uname)
	if err != nil {
		return User{}, err
	}
	usr.Name = uu.Name
	usr.Email = uu.Email
	usr.UpdatedAt = time.Now().UTC()
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// Delete removes the user and all of their marks.
func (svc *Service) Delete(ctx context.Context, uname string) error {
	return svc.repo.DeleteUser(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// SetPassword sets a new password without applying the password policy (admin use).
func (svc *Service) SetPassword(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.Get(ctx, uname)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// Save creates the user or, if the username exists, updates its name, role and password (admin use).
func (svc *Service) Save(ctx context.Context, usr User, pwd string) (User, error) {
	now := time.Now().UTC()
	existing, err := svc.Get(ctx, usr.Username)
	switch errors.Cause(err) {
	case nil:
		existing.Name = usr.Name
		existing.Role = usr.Role
		existing.IsActive = true
		existing.UpdatedAt = now
		if usr.Email != "" {
			existing.Email = usr.Email
		}
		if err = existing.SetPassword(pwd); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
		return svc.repo.UpdateUser(ctx, existing)
	case ErrNotFound:
		usr.Username = core.CleanString(usr.Username, true /* lower */)
		usr.IsActive = true
		usr.CreatedAt = now
		usr.UpdatedAt = now
		if err = usr.SetPassword(pwd); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
		return svc.repo.CreateUser(ctx, usr)
	default:
		return User{}, errors.Wrap(err, "finding user")
	}
}
