package remote

import (
	"context"
	"errors"

	"pet-studio/internal/domain/store"
)

// ErrRemote clasifica cualquier falla del servicio remoto. Un envelope
// {success:false} y un error de transporte se tratan igual: el caller surfacea
// una falla reintentable y no toca su estado.
var ErrRemote = errors.New("remote service failure")

type CreatePetInput struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Breed       string `json:"breed"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
}

type CreateProfileInput struct {
	PetID  int64  `json:"petId"`
	Style  string `json:"style"`
	Photos []int  `json:"photos"`
}

// Client es el boundary asíncrono que reemplaza las llamadas HTTP de
// login/signup/pet/profile. El core no conoce su implementación.
type Client interface {
	Login(ctx context.Context, email, provider string) (store.User, error)
	Signup(ctx context.Context, email, name, provider string) (store.User, error)

	ListPets(ctx context.Context, userID string) ([]store.Pet, error)
	CreatePet(ctx context.Context, in CreatePetInput) (store.Pet, error)

	ListProfiles(ctx context.Context, userID string) ([]store.ProfileResult, error)
	CreateProfile(ctx context.Context, in CreateProfileInput) (store.ProfileResult, error)
}
