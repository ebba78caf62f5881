package routes

import (
	"clinic/cmd/internal/service"
	"clinic/cmd/internal/utils"
	"clinic/cmd/internal/utils/apierror"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// UserService manages front-desk staff accounts backed by Cognito.
type UserService interface {
	GetUsers(subId string) ([]*service.UserResponse, apierror.ErrorResponse)
	GetUser(rawId, subId string) (*service.UserResponse, apierror.ErrorResponse)
	CreateUser(req *service.CreateUserRequest) apierror.ErrorResponse
	Login(req *service.UserLoginRequest) (*service.UserLoginResponse, apierror.ErrorResponse)
	ConfirmSignup(req *service.ConfirmSignupRequest) apierror.ErrorResponse
}

type DefaultUserRoute struct {
	UserService UserService
}

func NewUserDefault(userService UserService) *DefaultUserRoute {
	return &DefaultUserRoute{UserService: userService}
}

// ListStaff returns every staff account. Only admins may call it.
func (u *DefaultUserRoute) ListStaff(c echo.Context) error {
	sub, errResp := callerSub(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	staff, apierr := u.UserService.GetUsers(sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": staff})
}

// GetStaff returns one account by numeric id, or the caller's own for "@me".
func (u *DefaultUserRoute) GetStaff(c echo.Context) error {
	rawId := strings.TrimSpace(c.Param("id"))
	if rawId == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}
	sub, errResp := callerSub(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	user, apierr := u.UserService.GetUser(rawId, sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, user)
}

// Signup registers a staff member. The account stays unusable until the
// emailed code is confirmed.
func (u *DefaultUserRoute) Signup(c echo.Context) error {
	var req service.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := u.UserService.CreateUser(&req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusCreated)
}

func (u *DefaultUserRoute) ConfirmSignup(c echo.Context) error {
	var req service.ConfirmSignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := u.UserService.ConfirmSignup(&req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

// Login exchanges credentials for Cognito tokens. It is rate limited per client.
func (u *DefaultUserRoute) Login(c echo.Context) error {
	var req service.UserLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	tokens, apierr := u.UserService.Login(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, tokens)
}

// callerSub is the Cognito subject the auth middleware put on the request.
func callerSub(c echo.Context) (string, apierror.ErrorResponse) {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return "", apierror.InvalidAuthTokenError
	}
	return data.Sub, nil
}
