// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package api

import (
	"context"
	"errors"

	"github.com/faultline-hq/faultline/internal/config"
	"github.com/faultline-hq/faultline/internal/models"
)

// ErrOrganizationNotFound is returned by OrganizationStore lookups for
// unknown slugs. The handlers answer it with 404, indistinguishable from a
// missing feature flag so slugs cannot be enumerated.
var ErrOrganizationNotFound = errors.New("organization not found")

// OrganizationStore resolves organizations and the projects an actor may
// query. Project access control lives behind this interface; the handlers
// only care about the resulting project ID scope.
type OrganizationStore interface {
	GetOrganization(ctx context.Context, slug string) (*models.Organization, error)
	GetProjects(ctx context.Context, orgID int64, actor string) ([]models.Project, error)
}

// StaticStore is an OrganizationStore backed by configuration. Every actor
// sees every configured project; deployments needing real access control
// plug in their own store.
type StaticStore struct {
	orgs     map[string]models.Organization
	projects map[int64][]models.Project
}

// NewStaticStore builds a store from the configured organization directory.
func NewStaticStore(orgs []config.OrganizationConfig) *StaticStore {
	s := &StaticStore{
		orgs:     make(map[string]models.Organization, len(orgs)),
		projects: make(map[int64][]models.Project, len(orgs)),
	}
	for _, org := range orgs {
		s.orgs[org.Slug] = models.Organization{ID: org.ID, Slug: org.Slug, Name: org.Name}
		projects := make([]models.Project, 0, len(org.Projects))
		for _, p := range org.Projects {
			projects = append(projects, models.Project{ID: p.ID, Slug: p.Slug, Name: p.Name})
		}
		s.projects[org.ID] = projects
	}
	return s
}

func (s *StaticStore) GetOrganization(_ context.Context, slug string) (*models.Organization, error) {
	org, ok := s.orgs[slug]
	if !ok {
		return nil, ErrOrganizationNotFound
	}
	return &org, nil
}

func (s *StaticStore) GetProjects(_ context.Context, orgID int64, _ string) ([]models.Project, error) {
	return s.projects[orgID], nil
}
