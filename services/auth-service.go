package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/viratpk18/Employee-Task-Manager-BE/models"
	"github.com/viratpk18/Employee-Task-Manager-BE/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrInvalidCredentials keeps login failures indistinguishable between a
// missing user and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	usersCollection *mongo.Collection
}

func NewAuthService(users *mongo.Collection) *AuthService {
	return &AuthService{usersCollection: users}
}

// Login verifies the credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	err := s.usersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to retrieve user: %v", err)
	}

	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(user.Password, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %v", err)
	}

	return token, &user, nil
}
