package service

import (
	"context"
	"errors"
	"strings"

	"go-catan/engine"
	"go-catan/entities"
	"go-catan/repository"
	"go-catan/utils"

	"golang.org/x/crypto/bcrypt"
)

// Register creates a user and returns an access token for it.
func (g *Game) Register(ctx context.Context, username, password string) (entities.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return entities.User{}, "", g.fail("register", username, engine.Invalid("Username and password are required"))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cost)
	if err != nil {
		return entities.User{}, "", g.fail("register", username, engine.Storage(err))
	}

	var user entities.User
	err = g.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		user, err = tx.InsertUser(ctx, entities.User{Username: username, PasswordHash: string(hash)})
		return err
	})
	if err != nil {
		return entities.User{}, "", g.fail("register", username, err)
	}
	token, err := utils.GenerateAccessToken(g.secret, username, g.accessTTL)
	if err != nil {
		return entities.User{}, "", g.fail("register", username, engine.Storage(err))
	}
	g.done("register", username)
	return user, token, nil
}

// Login 校验密码并签发 token
func (g *Game) Login(ctx context.Context, username, password string) (entities.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return entities.User{}, "", g.fail("login", username, engine.Invalid("Username and password are required"))
	}

	var user entities.User
	err := g.store.View(ctx, func(tx repository.Tx) error {
		var err error
		user, err = tx.UserByName(ctx, username)
		return err
	})
	if errors.Is(err, engine.ErrUserNotFound) {
		return entities.User{}, "", g.fail("login", username, engine.ErrInvalidCredentials)
	}
	if err != nil {
		return entities.User{}, "", g.fail("login", username, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return entities.User{}, "", g.fail("login", username, engine.ErrInvalidCredentials)
		}
		return entities.User{}, "", g.fail("login", username, engine.Storage(err))
	}
	token, err := utils.GenerateAccessToken(g.secret, username, g.accessTTL)
	if err != nil {
		return entities.User{}, "", g.fail("login", username, engine.Storage(err))
	}
	g.done("login", username)
	return user, token, nil
}

// Authenticate resolves a bearer token to the username it was issued for.
func (g *Game) Authenticate(token string) (string, error) {
	claims, err := utils.ParseAccessToken(token, g.secret)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}
