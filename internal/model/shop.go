package model

type Unlockable struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Description           string `json:"description"`
	Type                  string `json:"type"`
	Cost                  int64  `json:"cost"`
	RequiredAchievementID string `json:"required_achievement_id,omitempty"`
	IsOwned               bool   `json:"is_owned"`
	IsEquipped            bool   `json:"is_equipped"`
}

type GetUnlockablesRequest struct {
	Type string `json:"type"`
}

type GetUnlockablesResponse struct {
	Unlockables []Unlockable `json:"unlockables"`
}

type PurchaseUnlockableRequest struct {
	UnlockableID string `json:"unlockable_id"`
}

type PurchaseUnlockableResponse struct {
	Balance int64 `json:"balance"`
}

type EquipUnlockableRequest struct {
	UnlockableID string `json:"unlockable_id"`
}

type EquipUnlockableResponse struct{}
