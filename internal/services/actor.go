package services

import "evspare/internal/models"

func requireActor(actor *models.Session) error {
	if actor == nil || actor.UserID == "" {
		return ErrNotAuthenticated
	}
	return nil
}

func requireAdminActor(actor *models.Session) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.HasRole(models.RoleAdmin) {
		return ErrUnauthorized
	}
	return nil
}
