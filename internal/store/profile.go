// internal/store/profile.go
package store

import "context"

// UserProfile is the subset of a user document the pipeline cares about.
type UserProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Language string `json:"language,omitempty"`
}

// GetUserProfile fetches the profile for userID from collection. A missing
// id, collection, or document yields (nil, nil). Store-level failures are
// also absorbed into an absent profile by the caller per the fallback
// policy, so this only returns the error for logging.
func GetUserProfile(ctx context.Context, s DocumentStore, collection, userID string) (*UserProfile, error) {
	if userID == "" || collection == "" {
		return nil, nil
	}

	doc, err := s.Get(ctx, collection, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	profile := &UserProfile{}
	if v, ok := doc["name"].(string); ok {
		profile.Name = v
	}
	if v, ok := doc["email"].(string); ok {
		profile.Email = v
	}
	if v, ok := doc["language"].(string); ok {
		profile.Language = v
	}
	return profile, nil
}
