package app

import (
	"fmt"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

// GetProfile fetches a contractor's matching profile.
func (a *App) GetProfile(contractorID string) (domain.ContractorProfile, bool, error) {
	return a.store.GetContractorProfile(contractorID)
}

// SaveProfile upserts the contractor's matching profile.
func (a *App) SaveProfile(contractorID string, p domain.ContractorProfile) (domain.ContractorProfile, error) {
	now := a.now()
	p.ContractorID = contractorID
	if existing, ok, err := a.store.GetContractorProfile(contractorID); err != nil {
		return domain.ContractorProfile{}, fmt.Errorf("load profile: %w", err)
	} else if ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if err := a.store.SaveContractorProfile(p); err != nil {
		return domain.ContractorProfile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}
