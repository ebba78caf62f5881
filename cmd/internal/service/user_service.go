package service

import (
	"clinic/cmd/internal/domain/entity"
	cognitoclient "clinic/cmd/internal/integration/aws/cognito"
	"clinic/cmd/internal/utils"
	"clinic/cmd/internal/utils/apierror"
	"errors"
	"strconv"

	"github.com/aws/smithy-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindByID(id int) (*entity.User, error)
	FindBySub(sub string) (*entity.User, error)
	FindAll() ([]*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	ExistsByEmail(email string) (bool, error)
	Save(user *entity.User) error
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64,hasspecial,hasdigit,hasupper,haslower,nospaces"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

type ConfirmSignupRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,min=1,max=6"`
}

type UserResponse struct {
	ID            int    `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	IsAdmin       bool   `json:"is_admin"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type UserLoginResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int32  `json:"expires_in"`
}

// Cognito error codes per call, mapped onto what the front desk sees.
var (
	signupErrors = map[string]apierror.ErrorResponse{
		"InvalidPasswordException": apierror.IDPInvalidPasswordError,
		"UsernameExistsException":  apierror.IDPExistingEmailError,
	}
	signinErrors = map[string]apierror.ErrorResponse{
		"UserNotFoundException":     apierror.IDPUserNotFoundError,
		"UserNotConfirmedException": apierror.IDPUserNotConfirmedError,
		"NotAuthorizedException":    apierror.IDPCredentialsMismatchError,
	}
	confirmErrors = map[string]apierror.ErrorResponse{
		"CodeMismatchException": apierror.IDPConfirmCodeMismatchError,
		"ExpiredCodeException":  apierror.IDPConfirmCodeExpiredError,
		"UserNotFoundException": apierror.IDPUserNotFoundError,
	}
)

type DefaultUserService struct {
	UserRepo UserRepository
	Validate *validator.Validate
	Cognito  cognitoclient.CognitoInterface
}

func NewUserService(userRepo UserRepository, validate *validator.Validate, cogClient cognitoclient.CognitoInterface) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, Validate: validate, Cognito: cogClient}
}

// GetUsers lists every account. Only administrators may see the list.
func (u *DefaultUserService) GetUsers(subId string) ([]*UserResponse, apierror.ErrorResponse) {
	caller, apierr := u.fetchBySub(subId)
	if apierr != nil {
		return nil, apierr
	}
	if caller == nil {
		return nil, apierror.UnknownCallerError
	}
	if !caller.IsAdmin {
		return nil, apierror.ForbiddenError
	}

	users, err := u.UserRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch all users: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*UserResponse, len(users))
	for i, user := range users {
		resp[i] = toUserResponse(user)
	}
	return resp, nil
}

// GetUser resolves "@me" to the caller, anything else to a numeric id.
func (u *DefaultUserService) GetUser(rawId, subId string) (*UserResponse, apierror.ErrorResponse) {
	var (
		user   *entity.User
		apierr apierror.ErrorResponse
	)
	if rawId == "@me" {
		user, apierr = u.fetchBySub(subId)
	} else {
		user, apierr = u.fetchByID(rawId)
	}
	if apierr != nil {
		return nil, apierr
	}

	if user == nil {
		return nil, apierror.NotFoundError
	}
	return toUserResponse(user), nil
}

// CreateUser registers the account with Cognito, which mails a confirmation
// code, and then stores the local user. A failed local save removes the
// Cognito account again.
func (u *DefaultUserService) CreateUser(req *CreateUserRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	found, err := u.UserRepo.ExistsByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return apierror.InternalServerError
	}
	if found {
		return apierror.UserAlreadyExistsError
	}

	sub, err := u.Cognito.SignUp(&cognitoclient.User{Email: req.Email, Password: req.Password})
	if err != nil {
		return idpError("signup", req.Email, err, signupErrors)
	}

	user := &entity.User{
		SubUUID:  sub,
		Username: req.Username,
		Email:    req.Email,
	}
	if err = u.UserRepo.Save(user); err != nil {
		log.Errorf("failed to create user %s: %v", req.Email, err)
		if derr := u.Cognito.AdminDeleteUser(req.Email); derr != nil {
			log.Errorf("failed to roll back cognito user %s: %v", req.Email, derr)
		}
		return apierror.InternalServerError
	}
	return nil
}

func (u *DefaultUserService) Login(req *UserLoginRequest) (*UserLoginResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.IDPUserNotFoundError
	}

	auth, err := u.Cognito.SignIn(&cognitoclient.UserLogin{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, idpError("signin", req.Email, err, signinErrors)
	}
	return &UserLoginResponse{
		AccessToken:  auth.AccessToken,
		IDToken:      auth.IDToken,
		RefreshToken: auth.RefreshToken,
		ExpiresIn:    auth.ExpiresIn,
	}, nil
}

func (u *DefaultUserService) ConfirmSignup(req *ConfirmSignupRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return apierror.InternalServerError
	}
	if user == nil {
		return apierror.IDPUserNotFoundError
	}
	if user.EmailVerified {
		return apierror.UserAlreadyConfirmedError
	}

	err = u.Cognito.ConfirmAccount(&cognitoclient.UserConfirmation{Email: req.Email, Code: req.Code})
	if err != nil {
		return idpError("confirmation", req.Email, err, confirmErrors)
	}

	user.EmailVerified = true
	if err = u.UserRepo.Save(user); err != nil {
		// Cognito already confirmed the account; the flag catches up on the next save.
		log.Errorf("failed to update user (%d) verified status: %v", user.ID, err)
	}
	return nil
}

// EnsureUser makes sure a local account exists for sub. Used when token
// verification is turned off and every request runs as one fixed user.
func (u *DefaultUserService) EnsureUser(sub, username string) error {
	user, err := u.UserRepo.FindBySub(sub)
	if err != nil {
		return err
	}
	if user != nil {
		return nil
	}
	return u.UserRepo.Save(&entity.User{
		SubUUID:       sub,
		Username:      username,
		Email:         username + "@localhost",
		EmailVerified: true,
		IsAdmin:       true,
	})
}

func (u *DefaultUserService) fetchBySub(sub string) (*entity.User, apierror.ErrorResponse) {
	user, err := u.UserRepo.FindBySub(sub)
	if err != nil {
		log.Errorf("failed to find user (%s) by sub: %v", sub, err)
		return nil, apierror.InternalServerError
	}
	return user, nil
}

func (u *DefaultUserService) fetchByID(rawId string) (*entity.User, apierror.ErrorResponse) {
	userId, err := strconv.Atoi(rawId)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("id", "int32")
	}
	user, err := u.UserRepo.FindByID(userId)
	if err != nil {
		log.Errorf("failed to find user (%s) by id: %v", rawId, err)
		return nil, apierror.InternalServerError
	}
	return user, nil
}

// idpError translates a Cognito failure using the known codes of the call;
// unknown codes and transport errors become a 500.
func idpError(op, email string, err error, known map[string]apierror.ErrorResponse) apierror.ErrorResponse {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if mapped, ok := known[apiErr.ErrorCode()]; ok {
			return mapped
		}
		log.Errorf("%s failed for user (%s): %s - %s", op, email, apiErr.ErrorCode(), apiErr.ErrorMessage())
		return apierror.InternalServerError
	}

	log.Errorf("%s failed for user (%s): %v", op, email, err)
	return apierror.InternalServerError
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		IsAdmin:       user.IsAdmin,
		CreatedAt:     utils.FormatEpoch(user.CreatedAt),
		UpdatedAt:     utils.FormatEpoch(user.UpdatedAt),
	}
}
