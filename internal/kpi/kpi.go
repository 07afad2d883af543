package kpi

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avsrecruit/talentsearch/internal/db"
	"github.com/avsrecruit/talentsearch/internal/profile"
)

// Service computes recruiting KPIs from the profile corpus and the
// pipeline history tables.
type Service struct {
	profiles *profile.Store
	db       *db.DB
}

// NewService creates a KPI service.
func NewService(profiles *profile.Store, database *db.DB) *Service {
	return &Service{profiles: profiles, db: database}
}

// Overview summarizes the candidate corpus.
type Overview struct {
	TotalCandidates   int            `json:"total_candidates"`
	ByRole            map[string]int `json:"by_role"`
	AverageExperience float64        `json:"average_experience"`
	TopSkills         []SkillCount   `json:"top_skills"`
}

// SkillCount is one skill with its corpus frequency.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// StageCount is the number of candidates that reached a funnel stage.
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// Conversion is the pass rate between two adjacent funnel stages.
type Conversion struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

// Funnel is the full hiring funnel with stage conversions.
type Funnel struct {
	Stages      []StageCount `json:"stages"`
	Conversions []Conversion `json:"conversions"`
}

// RejectionSummary aggregates recorded rejections.
type RejectionSummary struct {
	Total    int            `json:"total"`
	ByStage  map[string]int `json:"by_stage"`
	ByReason map[string]int `json:"by_reason"`
}

// TimeToHire reports how long hired candidates spent in the pipeline.
type TimeToHire struct {
	Hired       int     `json:"hired"`
	AverageDays float64 `json:"average_days"`
}

// TrendPoint is the number of candidates ingested on one day.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Trends is daily corpus growth over a recent window.
type Trends struct {
	Days   int          `json:"days"`
	Points []TrendPoint `json:"points"`
}

// Overview computes corpus-level statistics. Top skills are limited to
// the ten most frequent, ties broken alphabetically.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	profiles, err := s.profiles.List()
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}

	o := &Overview{
		TotalCandidates: len(profiles),
		ByRole:          make(map[string]int),
	}

	skillCounts := make(map[string]int)
	totalYears := 0
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		role := p.RoleCategory
		if role == "" {
			role = "Uncategorized"
		}
		o.ByRole[role]++
		totalYears += p.ExperienceYears
		for _, skill := range p.Skills {
			skillCounts[strings.ToLower(skill.Name)]++
		}
	}
	if len(profiles) > 0 {
		o.AverageExperience = float64(totalYears) / float64(len(profiles))
	}

	for skill, count := range skillCounts {
		o.TopSkills = append(o.TopSkills, SkillCount{Skill: skill, Count: count})
	}
	sort.Slice(o.TopSkills, func(i, j int) bool {
		if o.TopSkills[i].Count != o.TopSkills[j].Count {
			return o.TopSkills[i].Count > o.TopSkills[j].Count
		}
		return o.TopSkills[i].Skill < o.TopSkills[j].Skill
	})
	if len(o.TopSkills) > 10 {
		o.TopSkills = o.TopSkills[:10]
	}

	return o, nil
}

// Funnel computes the cumulative hiring funnel: a candidate currently
// at Interview has also reached Uploaded and Screening. Conversion is
// the share of candidates at a stage that reached the next one; an
// empty stage converts at zero.
func (s *Service) Funnel(ctx context.Context) (*Funnel, error) {
	profiles, err := s.profiles.List()
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}

	stageIndex := make(map[string]int, len(profile.Stages))
	for i, stage := range profile.Stages {
		stageIndex[stage] = i
	}

	reached := make([]int, len(profile.Stages))
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx, ok := stageIndex[p.Stage]
		if !ok {
			idx = 0
		}
		for i := 0; i <= idx; i++ {
			reached[i]++
		}
	}

	f := &Funnel{}
	for i, stage := range profile.Stages {
		f.Stages = append(f.Stages, StageCount{Stage: stage, Count: reached[i]})
	}
	for i := 0; i < len(profile.Stages)-1; i++ {
		rate := 0.0
		if reached[i] > 0 {
			rate = float64(reached[i+1]) / float64(reached[i])
		}
		f.Conversions = append(f.Conversions, Conversion{
			From: profile.Stages[i],
			To:   profile.Stages[i+1],
			Rate: rate,
		})
	}
	return f, nil
}

// RecordRejection stores one rejection event.
func (s *Service) RecordRejection(ctx context.Context, candidateID, vacancyID, stage, reason string) error {
	if candidateID == "" {
		return fmt.Errorf("candidate_id is required")
	}
	if !profile.ValidStage(stage) {
		return fmt.Errorf("invalid pipeline stage %q", stage)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rejections (id, candidate_id, vacancy_id, stage, reason)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), candidateID, vacancyID, stage, reason,
	)
	if err != nil {
		return fmt.Errorf("inserting rejection: %w", err)
	}
	return nil
}

// Rejections aggregates the recorded rejections by stage and reason.
func (s *Service) Rejections(ctx context.Context) (*RejectionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT stage, reason FROM rejections`)
	if err != nil {
		return nil, fmt.Errorf("querying rejections: %w", err)
	}
	defer rows.Close()

	summary := &RejectionSummary{
		ByStage:  make(map[string]int),
		ByReason: make(map[string]int),
	}
	for rows.Next() {
		var stage, reason string
		if err := rows.Scan(&stage, &reason); err != nil {
			return nil, fmt.Errorf("scanning rejection: %w", err)
		}
		summary.Total++
		summary.ByStage[stage]++
		if reason == "" {
			reason = "unspecified"
		}
		summary.ByReason[reason]++
	}
	return summary, rows.Err()
}

// TimeToHire averages, over candidates with a transition into Hired,
// the days between their first recorded transition and the hire.
// Candidates hired in their first recorded transition count as zero
// days; no hires yields a zero report, not an error.
func (s *Service) TimeToHire(ctx context.Context) (*TimeToHire, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT candidate_id, to_stage, moved_at FROM stage_transitions ORDER BY moved_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying transitions: %w", err)
	}
	defer rows.Close()

	first := make(map[string]time.Time)
	hired := make(map[string]time.Time)
	for rows.Next() {
		var (
			candidateID, toStage string
			movedAt              time.Time
		)
		if err := rows.Scan(&candidateID, &toStage, &movedAt); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		if _, ok := first[candidateID]; !ok {
			first[candidateID] = movedAt
		}
		if toStage == profile.StageHired {
			if _, ok := hired[candidateID]; !ok {
				hired[candidateID] = movedAt
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	report := &TimeToHire{}
	totalDays := 0.0
	for candidateID, hiredAt := range hired {
		report.Hired++
		totalDays += hiredAt.Sub(first[candidateID]).Hours() / 24
	}
	if report.Hired > 0 {
		report.AverageDays = totalDays / float64(report.Hired)
	}
	return report, nil
}

// HiringTrends counts candidates by ingestion date over the last days
// days. Profiles without a parseable parsed_date are skipped.
func (s *Service) HiringTrends(ctx context.Context, days int) (*Trends, error) {
	if days <= 0 {
		days = 30
	}

	all, err := s.profiles.List()
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	byDate := make(map[string]int)
	for _, p := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.ParsedDate == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, p.ParsedDate)
		if err != nil {
			continue
		}
		if parsed.Before(cutoff) {
			continue
		}
		byDate[parsed.Format("2006-01-02")]++
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	trends := &Trends{Days: days, Points: make([]TrendPoint, len(dates))}
	for i, d := range dates {
		trends.Points[i] = TrendPoint{Date: d, Count: byDate[d]}
	}
	return trends, nil
}
