package services

import (
	"errors"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/lac-hong-legacy/authguard/dto"
	"github.com/lac-hong-legacy/authguard/model"
	"github.com/lac-hong-legacy/authguard/shared"
)

type UserService struct {
	appContext.DefaultService

	sqlSvc   SqlService
	emailSvc *EmailService
}

const USER_SVC = "user_svc"

func (svc UserService) Id() string {
	return USER_SVC
}

func (svc *UserService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *UserService) Start() error {
	if sqlSvc, ok := svc.Service(POSTGRES_SVC).(SqlService); ok {
		svc.sqlSvc = sqlSvc
	} else {
		svc.sqlSvc = svc.Service(SQLITE_SVC).(SqlService)
	}
	if emailSvc, ok := svc.Service(EMAIL_SVC).(*EmailService); ok {
		svc.emailSvc = emailSvc
	}
	return nil
}

// Signup registers a new account. Login IDs and email addresses are unique;
// the password is stored only as a bcrypt hash.
func (svc *UserService) Signup(req *dto.SignupRequest) (*dto.SignupResponse, error) {
	exists, err := svc.sqlSvc.Users().LoginIDExists(req.LoginID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	if exists {
		return nil, shared.NewConflictError(shared.CodeDuplicateLoginID, "login ID is already taken")
	}

	exists, err = svc.sqlSvc.Users().EmailExists(req.Email)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	if exists {
		return nil, shared.NewConflictError(shared.CodeDuplicateEmail, "email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "internal server error")
	}

	user := &model.User{
		LoginID:  req.LoginID,
		Password: string(hash),
		Name:     req.Name,
		Email:    req.Email,
		Role:     shared.RoleUser,
		Enabled:  true,
	}

	if _, err := svc.sqlSvc.Users().Create(user); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"login_id": user.LoginID,
	}).Info("user registered")

	if svc.emailSvc != nil {
		svc.emailSvc.SendWelcome(user.Email, user.Name, user.LoginID)
	}

	return &dto.SignupResponse{
		UserID:  user.ID,
		LoginID: user.LoginID,
	}, nil
}

// CheckLoginID reports whether a login ID is still free to register.
func (svc *UserService) CheckLoginID(loginID string) (*dto.CheckIDResponse, error) {
	exists, err := svc.sqlSvc.Users().LoginIDExists(loginID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	return &dto.CheckIDResponse{
		LoginID:   loginID,
		Available: !exists,
	}, nil
}

// FindByLoginID returns the user, or nil when no such account exists.
func (svc *UserService) FindByLoginID(loginID string) (*model.User, error) {
	user, err := svc.sqlSvc.Users().GetByLoginID(loginID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}
	return user, nil
}

func (svc *UserService) FindByID(id string) (*model.User, error) {
	user, err := svc.sqlSvc.Users().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}
	return user, nil
}

// VerifyPassword checks a candidate password against the stored hash.
func (svc *UserService) VerifyPassword(user *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

// RecordLogin stamps the user's last login metadata.
func (svc *UserService) RecordLogin(userID, ip string) {
	if err := svc.sqlSvc.Users().RecordLogin(userID, ip, time.Now()); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("failed to record login")
	}
}
