package store

// User es el perfil de la sesión actual. Se crea a partir de la respuesta de
// login/signup y se destruye (solo localmente) en logout.
type User struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profileImage"`
	JoinDate     string  `json:"joinDate"`
}

// Pet es una mascota registrada por el usuario.
// El ID lo asigna el servicio remoto (opaco, basado en timestamp) y debe ser
// único entre las mascotas del usuario.
type Pet struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Breed        string `json:"breed"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	Description  string `json:"description"`
	ProfileImage string `json:"profileImage"`
	Style        string `json:"style"`
	CreatedAt    string `json:"createdAt"`
}

// ProfileResult es el resultado de una generación.
// PetID referencia una Pet existente al momento de crearse, pero el registro
// se conserva aunque la mascota se borre después: PetName es un snapshot
// denormalizado a propósito, para que el historial siga siendo legible.
type ProfileResult struct {
	ID      int64  `json:"id"`
	PetID   int64  `json:"petId"`
	PetName string `json:"petName"`
	Style   string `json:"style"`
	Date    string `json:"date"`
	Image   string `json:"image"`
	Likes   int    `json:"likes"`
}

// PetPatch es un patch parcial: nil = no tocar ese campo.
type PetPatch struct {
	Name         *string `json:"name"`
	Type         *string `json:"type"`
	Breed        *string `json:"breed"`
	Age          *int    `json:"age"`
	Gender       *string `json:"gender"`
	Description  *string `json:"description"`
	ProfileImage *string `json:"profileImage"`
	Style        *string `json:"style"`
}

func (p PetPatch) apply(pet Pet) Pet {
	if p.Name != nil {
		pet.Name = *p.Name
	}
	if p.Type != nil {
		pet.Type = *p.Type
	}
	if p.Breed != nil {
		pet.Breed = *p.Breed
	}
	if p.Age != nil {
		pet.Age = *p.Age
	}
	if p.Gender != nil {
		pet.Gender = *p.Gender
	}
	if p.Description != nil {
		pet.Description = *p.Description
	}
	if p.ProfileImage != nil {
		pet.ProfileImage = *p.ProfileImage
	}
	if p.Style != nil {
		pet.Style = *p.Style
	}
	return pet
}
