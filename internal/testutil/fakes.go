package testutil

import (
	"context"
	"sync"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/auth"
	"github.com/google/uuid"
)

// FakeAuthClient is an in-memory auth.Client. Accounts map email to
// password; tokens map an issued access token to its identity.
type FakeAuthClient struct {
	mu sync.Mutex

	Accounts   map[string]string
	Identities map[string]auth.Identity
	Tokens     map[string]string

	// ConfirmEmail withholds the access token on sign-up.
	ConfirmEmail bool
	Err          error
	SignedOut    []string
}

var _ auth.Client = (*FakeAuthClient)(nil)

func NewFakeAuthClient() *FakeAuthClient {
	return &FakeAuthClient{
		Accounts:   make(map[string]string),
		Identities: make(map[string]auth.Identity),
		Tokens:     make(map[string]string),
	}
}

// AddUser registers an account and returns a valid token for it.
func (f *FakeAuthClient) AddUser(id auth.Identity, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Accounts[id.Email] = password
	f.Identities[id.Email] = id
	token := "token-" + id.ID
	f.Tokens[token] = id.Email
	return token
}

func (f *FakeAuthClient) GetUser(_ context.Context, token string) (*auth.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	email, ok := f.Tokens[token]
	if !ok {
		return nil, apperr.Auth("invalid JWT")
	}
	id := f.Identities[email]
	return &id, nil
}

func (f *FakeAuthClient) SignUp(_ context.Context, email, password, name string) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if _, ok := f.Accounts[email]; ok {
		return nil, apperr.Validation("User already registered")
	}
	id := auth.Identity{ID: uuid.NewString(), Email: email, Name: name}
	f.Accounts[email] = password
	f.Identities[email] = id

	session := &auth.Session{User: id}
	if !f.ConfirmEmail {
		session.AccessToken = "token-" + id.ID
		f.Tokens[session.AccessToken] = email
	}
	return session, nil
}

func (f *FakeAuthClient) SignInWithPassword(_ context.Context, email, password string) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if pw, ok := f.Accounts[email]; !ok || pw != password {
		return nil, apperr.Auth("Invalid login credentials")
	}
	id := f.Identities[email]
	token := "token-" + id.ID
	f.Tokens[token] = email
	return &auth.Session{AccessToken: token, User: id}, nil
}

func (f *FakeAuthClient) SignOut(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if _, ok := f.Tokens[token]; !ok {
		return apperr.Auth("invalid JWT")
	}
	delete(f.Tokens, token)
	f.SignedOut = append(f.SignedOut, token)
	return nil
}

// FakeGenerator replies with Reply, or fails with Err. Prompts records every
// prompt it was given.
type FakeGenerator struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Prompts []string
}

func (g *FakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	return g.Reply, nil
}
