package user

import "DonorLink/entity"

type Core interface {
	ListUsers(role string) ([]entity.Profile, error)
}
