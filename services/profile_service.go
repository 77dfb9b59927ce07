package services

import (
	"context"
	"fmt"
	"io"

	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/repositories"
	"github.com/sur-voley/club-system/storage"
	"github.com/sur-voley/club-system/utils"
)

type UpdateProfileInput struct {
	Role           *models.ProfileRole `json:"role,omitempty"`
	RUN            *string             `json:"run,omitempty"`
	Email          *string             `json:"email,omitempty"`
	Phone          *string             `json:"phone,omitempty"`
	FirstName      *string             `json:"first_name,omitempty"`
	MiddleName     *string             `json:"middle_name,omitempty"`
	LastName       *string             `json:"last_name,omitempty"`
	SecondLastName *string             `json:"second_last_name,omitempty"`
}

type ProfileService interface {
	GetProfileByID(ctx context.Context, id int) (*models.Profile, error)
	ListProfiles(ctx context.Context, filter repositories.ListProfilesFilter) ([]models.Profile, error)
	UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.Profile, error)
	// SetProfileActive enables/disables an account. currentUserID is the
	// authenticated caller: disabling your own account is rejected.
	SetProfileActive(ctx context.Context, id int, active bool, currentUserID int) error
	UploadPhoto(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Profile, error)
}

type profileService struct {
	profileRepo repositories.ProfileRepository
	uploader    storage.FileUploader
}

func NewProfileService(profileRepo repositories.ProfileRepository, uploader storage.FileUploader) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		uploader:    uploader,
	}
}

func (s *profileService) GetProfileByID(ctx context.Context, id int) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	populateProfilePhotoURL(profile, s.uploader)
	return profile, nil
}

func (s *profileService) ListProfiles(ctx context.Context, filter repositories.ListProfilesFilter) ([]models.Profile, error) {
	profiles, err := s.profileRepo.List(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	for i := range profiles {
		populateProfilePhotoURL(&profiles[i], s.uploader)
	}
	return profiles, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, ErrInvalidRole
		}
		profile.Role = *input.Role
	}
	if input.RUN != nil {
		if !utils.IsValidRUN(*input.RUN) {
			return nil, ErrInvalidRUN
		}
		profile.RUN = utils.NormalizeRUN(*input.RUN)
	}
	if input.Email != nil {
		profile.Email = *input.Email
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.IsValidPhone(*input.Phone) {
			return nil, ErrInvalidPhone
		}
		profile.Phone = input.Phone
	}
	if input.FirstName != nil {
		profile.FirstName = *input.FirstName
	}
	if input.MiddleName != nil {
		profile.MiddleName = input.MiddleName
	}
	if input.LastName != nil {
		profile.LastName = *input.LastName
	}
	if input.SecondLastName != nil {
		profile.SecondLastName = *input.SecondLastName
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, mapRepositoryError(err)
	}

	populateProfilePhotoURL(profile, s.uploader)
	return profile, nil
}

func (s *profileService) SetProfileActive(ctx context.Context, id int, active bool, currentUserID int) error {
	if !active && id == currentUserID {
		return ErrSelfDisableForbidden
	}
	return mapRepositoryError(s.profileRepo.SetActive(ctx, id, active))
}

func (s *profileService) UploadPhoto(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	key := fmt.Sprintf("profiles/%d/photo", id)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile photo: %w", err)
	}

	if err := s.profileRepo.UpdatePhotoKey(ctx, id, &result.Key); err != nil {
		return nil, mapRepositoryError(err)
	}

	profile.PhotoKey = &result.Key
	populateProfilePhotoURL(profile, s.uploader)
	return profile, nil
}
