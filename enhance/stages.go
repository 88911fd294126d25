package enhance

import (
	"context"
	"fmt"
	"strings"

	"github.com/lzy234/dataprocessing/model"
	"github.com/lzy234/dataprocessing/wiki"
)

// Stage answers are strict JSON objects; the shared preamble keeps the
// model from padding them with prose or guesses.
const answerContract = `Answer with a single JSON object and nothing else.
Use only facts stated in the provided article text. If the article does not
state a fact, use an empty string for that field. Never guess or invent.`

type basicResult struct {
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
}

type educationResult struct {
	Education string `json:"education"`
}

type careerResult struct {
	CareerHistory string `json:"careerHistory"`
}

type bioResult struct {
	Bio string `json:"bio"`
}

type organizationResult struct {
	Organization string `json:"organization"`
}

func (e *Enhancer) stageBasic(ctx context.Context, p *model.Person, rec *wiki.Record) error {
	var res basicResult
	err := e.cached(p.Name+"_basic", &res, func() error {
		excerpt := buildExcerpt(rec.Chunks, nil, 800)
		prompt := fmt.Sprintf(`%s

Determine the gender of %s from this article excerpt.

Article excerpt:
%s

JSON shape: {"gender": "male" | "female" | "other" | ""}`,
			answerContract, p.Name, excerpt)
		var g struct {
			Gender string `json:"gender"`
		}
		if err := e.callJSON(ctx, "basic", prompt, &g); err != nil {
			return err
		}
		res = basicResult{DateOfBirth: rec.BirthDate, Gender: strings.ToLower(strings.TrimSpace(g.Gender))}
		return nil
	})
	if err != nil {
		return err
	}
	if res.DateOfBirth != "" {
		p.DateOfBirth = res.DateOfBirth
	}
	if res.Gender != "" {
		p.Gender = res.Gender
	}
	if res.DateOfBirth != "" || res.Gender != "" {
		cite(p, rec)
	}
	return nil
}

func (e *Enhancer) stageEducation(ctx context.Context, p *model.Person, rec *wiki.Record) error {
	var res educationResult
	err := e.cached(p.Name+"_education", &res, func() error {
		excerpt := buildExcerpt(rec.Chunks,
			[]string{"education", "university", "college", "graduated", "degree", "studied"}, 3000)
		prompt := fmt.Sprintf(`%s

Summarize the education of %s: institutions attended and degrees earned,
in one or two sentences.

Article excerpt:
%s

JSON shape: {"education": "..."}`, answerContract, p.Name, excerpt)
		return e.callJSON(ctx, "education", prompt, &res)
	})
	if err != nil {
		return err
	}
	if res.Education == "" {
		res.Education = rec.Education
	}
	if res.Education != "" {
		p.Education = res.Education
		cite(p, rec)
	}
	return nil
}

func (e *Enhancer) stageCareer(ctx context.Context, p *model.Person, rec *wiki.Record) error {
	var res careerResult
	err := e.cached(p.Name+"_career", &res, func() error {
		excerpt := buildExcerpt(rec.Chunks,
			[]string{"career", "elected", "appointed", "served", "position", "founded", "work"}, 3500)
		prompt := fmt.Sprintf(`%s

Summarize the career history of %s in chronological order, focusing on
positions held and when. Their current role is: %s.

Article excerpt:
%s

JSON shape: {"careerHistory": "..."}`, answerContract, p.Name, p.CurrentRole, excerpt)
		return e.callJSON(ctx, "career", prompt, &res)
	})
	if err != nil {
		return err
	}
	if res.CareerHistory != "" {
		p.CareerHistory = res.CareerHistory
		cite(p, rec)
	}
	return nil
}

func (e *Enhancer) stageBio(ctx context.Context, p *model.Person, rec *wiki.Record) error {
	var res bioResult
	err := e.cached(p.Name+"_bio", &res, func() error {
		excerpt := buildExcerpt(rec.Chunks,
			[]string{"born", "early life", "career", "education", "political"}, 4000)
		prompt := fmt.Sprintf(`%s

Write a biography of %s in 200 to 500 words covering early life,
education, and career, in neutral encyclopedic tone.

Article excerpt:
%s

JSON shape: {"bio": "..."}`, answerContract, p.Name, excerpt)
		return e.callJSON(ctx, "bio", prompt, &res)
	})
	if err != nil {
		return err
	}
	if res.Bio != "" {
		p.Bio = res.Bio
		cite(p, rec)
	}
	return nil
}

func (e *Enhancer) stageOrganization(ctx context.Context, p *model.Person, rec *wiki.Record) error {
	var res organizationResult
	err := e.cached(p.Name+"_organization", &res, func() error {
		excerpt := buildExcerpt(rec.Chunks,
			[]string{"current", "serves", "member", "senator", "representative"}, 2000)
		prompt := fmt.Sprintf(`%s

Name the single organization %s currently belongs to, given their role
"%s". Use the organization's full formal English name.

Article excerpt:
%s

JSON shape: {"organization": "..."}`, answerContract, p.Name, p.CurrentRole, excerpt)
		return e.callJSON(ctx, "organization", prompt, &res)
	})
	if err != nil {
		return err
	}
	if res.Organization != "" {
		p.OrganizationName = res.Organization
		cite(p, rec)
	}
	return nil
}

// cite appends the biography source for a stage that extracted a value.
// Duplicates are collapsed later by finalizeSources.
func cite(p *model.Person, rec *wiki.Record) {
	p.Sources = append(p.Sources, model.Citation{
		SourceName:  "Wikipedia",
		SourceURL:   rec.URL,
		Reliability: "high",
	})
}
