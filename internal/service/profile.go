package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/emrgen/docgen/internal/model"
	"github.com/emrgen/docgen/internal/storage"
	"github.com/emrgen/docgen/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
)

// UpdateProfileRequest carries the profile fields a user may change. Nil
// fields are left untouched. Preferences are replaced as a whole.
type UpdateProfileRequest struct {
	CompanyName *string            `json:"companyName,omitempty"`
	Logo        *string            `json:"logo,omitempty"`
	Address     *string            `json:"address,omitempty"`
	Phone       *string            `json:"phone,omitempty"`
	Siret       *string            `json:"siret,omitempty"`
	VATNumber   *string            `json:"tva,omitempty"`
	IBAN        *string            `json:"iban,omitempty"`
	BIC         *string            `json:"bic,omitempty"`
	Preferences *model.Preferences `json:"preferences,omitempty"`
}

var logoTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
}

type ProfileService struct {
	store  store.Store
	bucket storage.Bucket
}

func NewProfileService(store store.Store, bucket storage.Bucket) *ProfileService {
	return &ProfileService{store: store, bucket: bucket}
}

// GetProfile returns the profile of userID. A user without a stored profile
// gets an empty one with default preferences.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		user = &model.User{ID: userID}
		user.Preferences = datatypes.NewJSONType(user.Prefs())
		return user, nil
	}
	return user, err
}

// UpdateProfile applies req to the profile of userID, creating it if needed.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*model.User, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	if req.Preferences != nil {
		if err := validatePrefs(req.Preferences); err != nil {
			return nil, err
		}
	}

	var user *model.User
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		user, err = tx.GetUser(ctx, userID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			user = &model.User{ID: userID}
		case err != nil:
			return err
		}

		applyProfile(user, req)
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("profile %s updated", userID)
	return user, nil
}

// UploadLogo stores the logo under logos/<user>-logo.<ext> and records its
// reference on the profile.
func (s *ProfileService) UploadLogo(ctx context.Context, userID, filename string, data []byte) (*model.User, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty logo", ErrValidation)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	contentType, ok := logoTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported logo type %q", ErrValidation, ext)
	}

	ref, err := s.bucket.Put(ctx, fmt.Sprintf("logos/%s-logo.%s", userID, ext), data, contentType)
	if err != nil {
		return nil, err
	}

	return s.UpdateProfile(ctx, userID, &UpdateProfileRequest{Logo: &ref})
}

func applyProfile(user *model.User, req *UpdateProfileRequest) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&user.CompanyName, req.CompanyName)
	set(&user.Logo, req.Logo)
	set(&user.Address, req.Address)
	set(&user.Phone, req.Phone)
	set(&user.Siret, req.Siret)
	set(&user.VATNumber, req.VATNumber)
	set(&user.IBAN, req.IBAN)
	set(&user.BIC, req.BIC)
	if req.Preferences != nil {
		user.Preferences = datatypes.NewJSONType(*req.Preferences)
	}
}

func validatePrefs(p *model.Preferences) error {
	if p.Language != "" {
		if _, err := language.Parse(p.Language); err != nil {
			return fmt.Errorf("%w: invalid language %q", ErrValidation, p.Language)
		}
	}
	if p.Currency != "" {
		if _, err := currency.ParseISO(p.Currency); err != nil {
			return fmt.Errorf("%w: invalid currency %q", ErrValidation, p.Currency)
		}
	}
	return nil
}
