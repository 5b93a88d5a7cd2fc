package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/user"
)

const contextObjectKey = "object"

func teacherMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		if claims.IsTeacher {
			return next(ctx)
		}
		return errHttpForbidden
	}
}

// studentObjectMiddleware sets the student named by the `username` path param as the context object.
func studentObjectMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := svc.GetStudent(ctx.Request().Context(), ctx.Param("username"))
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding student")
			}
			ctx.Set(contextObjectKey, usr)
			return next(ctx)
		}
	}
}

// examObjectMiddleware sets the exam named by the `param` path param as the context object.
func examObjectMiddleware(svc *exam.Service, param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ex, err := svc.Get(ctx.Request().Context(), ctx.Param(param))
			if err != nil {
				if errors.Cause(err) == exam.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding exam")
			}
			ctx.Set(contextObjectKey, ex)
			return next(ctx)
		}
	}
}

var (
	errUsrNotFoundInCtx  = errors.New("user object not found in echo.Context")
	errExamNotFoundInCtx = errors.New("exam object not found in echo.Context")
)

func contextStudent(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextObjectKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
}

func contextExam(ctx echo.Context) (exam.Exam, error) {
	if ex, ok := ctx.Get(contextObjectKey).(exam.Exam); ok {
		return ex, nil
	}
	return exam.Exam{}, errors.Wrap(errExamNotFoundInCtx, "retrieving object from context")
}
