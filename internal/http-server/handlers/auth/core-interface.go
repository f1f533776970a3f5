package auth

import "DonorLink/entity"

type Core interface {
	Register(req entity.RegisterRequest) (*entity.User, string, error)
	Login(email, password string) (*entity.User, string, error)
	GetUser(id string) (*entity.User, error)
}
