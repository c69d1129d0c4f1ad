//go:build integration

package integration

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/petstore-client/internal/auth"
	"github.com/fivetwenty-io/petstore-client/internal/testdata"
	"github.com/fivetwenty-io/petstore-client/pkg/converge"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

const listSize = 3

func (w *world) registerUserSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I have a user with the following details:$`, w.haveUserWithDetails)
	sc.Step(`^I create the user$`, w.createUser)
	sc.Step(`^the user should be created successfully$`, w.userShouldBeCreated)
	sc.Step(`^I update the user with new details:$`, w.updateUser)
	sc.Step(`^the user details should be updated$`, w.userShouldBeUpdated)
	sc.Step(`^I delete the user$`, w.deleteUser)
	sc.Step(`^the user should not be found$`, w.userShouldNotBeFound)
	sc.Step(`^I have created a user$`, w.haveCreatedUser)
	sc.Step(`^I login with the user's credentials$`, w.login)
	sc.Step(`^I should receive a login response with a session ID$`, w.shouldReceiveSession)
	sc.Step(`^I logout$`, w.logout)
	sc.Step(`^I should be logged out successfully$`, w.shouldBeLoggedOut)
	sc.Step(`^I create multiple users from a list$`, w.createUsersFromList)
	sc.Step(`^all users should be created successfully$`, w.allUsersShouldExist)
	sc.Step(`^a user with username "([^"]*)" does not exist$`, w.userDoesNotExist)
	sc.Step(`^I attempt to get the user with username "([^"]*)"$`, w.attemptGetUser)
}

func applyUserDetails(user *petstore.User, values map[string]string) {
	for key, value := range values {
		switch key {
		case "firstName":
			user.FirstName = value
		case "lastName":
			user.LastName = value
		case "email":
			user.Email = value
		case "password":
			user.Password = value
		case "phone":
			user.Phone = value
		}
	}
}

func (w *world) haveUserWithDetails(table *godog.Table) error {
	values := rowsToMap(table)
	user := &petstore.User{Username: testdata.UniqueUsername(values["firstName"])}

	applyUserDetails(user, values)
	w.user = user

	return nil
}

func (w *world) createUser(ctx context.Context) error {
	created, err := w.client().Users().CreateUntilVisible(ctx, w.user)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	username := created.Username
	w.deferCleanup(func(ctx context.Context) { _ = w.client().Users().DeleteUntilAbsent(ctx, username) })

	w.user.ID = created.ID

	return nil
}

func (w *world) userShouldBeCreated(ctx context.Context) error {
	fetched, err := w.client().Users().Get(ctx, w.user.Username)
	if err != nil {
		return err
	}

	return assertExpectedAndActual(assert.Equal, w.user.Email, fetched.Email)
}

func (w *world) updateUser(ctx context.Context, table *godog.Table) error {
	changed := *w.user
	applyUserDetails(&changed, rowsToMap(table))

	updated, err := w.client().Users().UpdateUntilReflected(ctx, w.user.Username, &changed)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	w.user = &changed
	w.user.ID = updated.ID

	return nil
}

func (w *world) userShouldBeUpdated(ctx context.Context) error {
	fetched, err := w.client().Users().Get(ctx, w.user.Username)
	if err != nil {
		return err
	}

	if err := assertExpectedAndActual(assert.Equal, w.user.FirstName, fetched.FirstName); err != nil {
		return err
	}

	return assertExpectedAndActual(assert.Equal, w.user.Email, fetched.Email)
}

func (w *world) deleteUser(ctx context.Context) error {
	return w.client().Users().DeleteUntilAbsent(ctx, w.user.Username)
}

func (w *world) userShouldNotBeFound(ctx context.Context) error {
	_, err := w.client().Users().Get(ctx, w.user.Username)

	return assertActual(assert.True, petstore.IsNotFound(err), "expected not found, got %v", err)
}

func (w *world) haveCreatedUser(ctx context.Context) error {
	w.user = w.generator.RandomUser()

	return w.createUser(ctx)
}

func (w *world) login(ctx context.Context) error {
	w.session, w.err = w.client().Users().Login(ctx, w.user.Username, w.user.Password)

	return nil
}

func (w *world) shouldReceiveSession() error {
	if w.err != nil {
		return fmt.Errorf("logging in: %w", w.err)
	}

	_, err := auth.SessionFromLogin(w.session.Message)

	return err
}

func (w *world) logout(ctx context.Context) error {
	w.response, w.err = w.client().Users().Logout(ctx)

	return nil
}

func (w *world) shouldBeLoggedOut() error {
	if w.err != nil {
		return fmt.Errorf("logging out: %w", w.err)
	}

	return assertExpectedAndActual(assert.Equal, "ok", w.response.Message)
}

func (w *world) createUsersFromList(ctx context.Context) error {
	w.users = make([]petstore.User, 0, listSize)
	for range listSize {
		w.users = append(w.users, *w.generator.RandomUser())
	}

	_, err := w.client().Users().CreateWithList(ctx, w.users)
	if err != nil {
		return fmt.Errorf("creating users: %w", err)
	}

	for _, user := range w.users {
		username := user.Username
		w.deferCleanup(func(ctx context.Context) { _ = w.client().Users().DeleteUntilAbsent(ctx, username) })
	}

	return nil
}

// allUsersShouldExist waits for each listed user through the executor,
// since bulk creation has no convergent variant.
func (w *world) allUsersShouldExist(ctx context.Context) error {
	executor := w.target.Client.Executor()

	for _, user := range w.users {
		_, err := executor.PollUntil(ctx, executor.Fetcher(petstore.UserRef(user.Username)), converge.Visible, converge.Policy{})
		if err != nil {
			return fmt.Errorf("user %s: %w", user.Username, err)
		}
	}

	return nil
}

func (w *world) userDoesNotExist(ctx context.Context, username string) error {
	return w.client().Users().DeleteUntilAbsent(ctx, username)
}

func (w *world) attemptGetUser(ctx context.Context, username string) error {
	w.user, w.err = w.client().Users().Get(ctx, username)

	return nil
}
