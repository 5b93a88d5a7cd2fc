package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.user.table))
	for _, u := range repo.db.user.table {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckUniqueness(_ context.Context, username, email, excludedUsername string) error {
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	for _, usr := range repo.db.user.table {
		if usr.Username == excludedUsername {
			continue
		}
		if usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.user.Lock()
	defer repo.db.user.Unlock()

	if _, ok := repo.db.user.table[usr.Username]; ok {
		return user.User{}, user.ErrUsernameExists
	}
	repo.db.user.table[usr.Username] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, username string) (user.User, error) {
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	if usr, ok := repo.db.user.table[username]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, orderings []core.DBOrdering) ([]user.User, error) {
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	search := strings.ToLower(filter.Search)
	users := make([]user.User, 0, len(repo.db.user.table))
	for _, u := range repo.query() {
		// users with search keyword matching any Name, Username or Email ?
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Username), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) &&
			!strings.Contains(strings.ToLower(u.Name), search) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		users = append(users, u)
	}

	sortUsers(users, orderings)
	return users, nil
}

func sortUsers(users []user.User, orderings []core.DBOrdering) {
	orderings = append(orderings[:len(orderings):len(orderings)], core.DBOrdering{Field: "username", Ascending: true})
	sort.SliceStable(users, func(i, j int) bool {
		for _, ord := range orderings {
			var a, b string
			switch ord.Field {
			case "username":
				a, b = users[i].Username, users[j].Username
			case "name":
				a, b = strings.ToLower(users[i].Name), strings.ToLower(users[j].Name)
			case "email":
				a, b = users[i].Email, users[j].Email
			case "created_at":
				if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
					return users[i].CreatedAt.Before(users[j].CreatedAt) == ord.Ascending
				}
				continue
			case "last_login":
				if !users[i].LastLogin.Equal(users[j].LastLogin) {
					return users[i].LastLogin.Before(users[j].LastLogin) == ord.Ascending
				}
				continue
			}
			if a != b {
				return (a < b) == ord.Ascending
			}
		}
		return false
	})
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.user.Lock()
	defer repo.db.user.Unlock()

	origUsr, ok := repo.db.user.table[usr.Username]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.CreatedAt = origUsr.CreatedAt
	if usr.PasswordHash == nil {
		usr.PasswordHash = origUsr.PasswordHash
	}
	repo.db.user.table[usr.Username] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUser(_ context.Context, username string) error {
	repo.db.user.Lock()
	defer repo.db.user.Unlock()
	repo.db.mark.Lock()
	defer repo.db.mark.Unlock()

	if _, ok := repo.db.user.table[username]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.user.table, username)
	for key := range repo.db.mark.table {
		if key.username == username {
			delete(repo.db.mark.table, key)
		}
	}
	return nil
}
