package seeder

import (
	"context"
	"fmt"

	"refermatch/internal/database"
)

// DemoSeeder loads a small fixed dataset for local runs: two postings, three
// profiles with overlapping work history, and two connectors. IDs are fixed
// so reruns are no-ops.
type DemoSeeder struct{}

func (DemoSeeder) Name() string { return "demo_data" }

const (
	demoProfileAna     = "11111111-1111-1111-1111-111111111101"
	demoProfileBruno   = "11111111-1111-1111-1111-111111111102"
	demoProfileCarla   = "11111111-1111-1111-1111-111111111103"
	demoConnectorDiego = "22222222-2222-2222-2222-222222222201"
	demoConnectorElena = "22222222-2222-2222-2222-222222222202"
	demoPostingBackend = "33333333-3333-3333-3333-333333333301"
	demoPostingData    = "33333333-3333-3333-3333-333333333302"
)

func (DemoSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "profiles", "id", "full_name", "current_company", "email", "phone"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "postings", "id", "organization", "title", "status"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	profiles := []struct {
		ID, Name, Title, Company, Industry, Seniority, Country, Email, Phone string
	}{
		{demoProfileAna, "Ana Torres", "Backend Engineer", "Rappi", "Technology", "senior", "MX", "ana.torres@example.com", ""},
		{demoProfileBruno, "Bruno Lima", "Data Engineer", "Kavak", "Technology", "mid", "BR", "bruno.lima@example.com", "+5511999990001"},
		{demoProfileCarla, "Carla Mendez", "Platform Engineer", "Globant", "Technology", "senior", "AR", "carla.mendez@example.com", ""},
	}
	for _, p := range profiles {
		_, err := tx.Exec(ctx,
			`INSERT INTO profiles (id, full_name, current_title, current_company, industry, seniority, country, languages, remote_preference, email, phone)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			 ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Name, p.Title, p.Company, p.Industry, p.Seniority, p.Country,
			[]string{"es", "en"}, true, p.Email, p.Phone,
		)
		if err != nil {
			return err
		}
	}

	history := []struct {
		ProfileID, Company, Title, Start, End string
	}{
		{demoProfileAna, "Rappi", "Backend Engineer", "2021-02-01", ""},
		{demoProfileAna, "Kavak", "Software Engineer", "2018-05-01", "2021-01-15"},
		{demoProfileBruno, "Kavak", "Data Engineer", "2019-03-01", "2022-08-01"},
		{demoProfileCarla, "Globant", "Platform Engineer", "2020-01-01", ""},
		{demoProfileCarla, "Rappi", "SRE", "2017-06-01", "2019-12-01"},
	}
	for _, h := range history {
		var end any
		if h.End != "" {
			end = h.End
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO work_history (id, profile_id, company_name, title, start_date, end_date)
			 VALUES (gen_random_uuid(), $1, $2, $3, $4::date, $5::date)
			 ON CONFLICT DO NOTHING`,
			h.ProfileID, h.Company, h.Title, h.Start, end,
		)
		if err != nil {
			return err
		}
	}

	connectors := []struct {
		ID, Name, ProfileID, Email, Phone string
	}{
		{demoConnectorDiego, "Diego Fuentes", demoProfileAna, "diego.fuentes@example.com", "+5215511112222"},
		{demoConnectorElena, "Elena Ruiz", "", "elena.ruiz@example.com", ""},
	}
	for _, c := range connectors {
		var profileID any
		if c.ProfileID != "" {
			profileID = c.ProfileID
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO connectors (id, name, profile_id, email, phone)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, profileID, c.Email, c.Phone,
		)
		if err != nil {
			return err
		}
	}

	postings := []struct {
		ID, Organization, Title, Seniority string
		MustHave, NonNegotiables           []string
	}{
		{
			demoPostingBackend, "Nuvocargo", "Senior Backend Engineer", "senior",
			[]string{"go", "postgres"}, []string{"work authorization in Mexico"},
		},
		{
			demoPostingData, "Clara", "Data Engineer", "mid",
			[]string{"python", "sql"}, nil,
		},
	}
	for _, p := range postings {
		_, err := tx.Exec(ctx,
			`INSERT INTO postings (id, organization, title, description, seniority, remote_allowed,
			                       must_have_skills, industries, languages, locations, non_negotiables, status)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,'active')
			 ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Organization, p.Title, "", p.Seniority, true,
			p.MustHave, []string{"Technology"}, []string{"es", "en"}, []string{"Remote"}, p.NonNegotiables,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
