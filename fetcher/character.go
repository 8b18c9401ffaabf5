package fetcher

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/krisalay/msea-cache/nexon"
	"github.com/krisalay/msea-cache/types"
)

// Character sub-resource names.
const (
	ResourceBasic           = "basic"
	ResourceStat            = "stat"
	ResourceHyperStat       = "hyperStat"
	ResourceAbility         = "ability"
	ResourceItemEquipment   = "itemEquipment"
	ResourceSymbolEquipment = "symbolEquipment"
	ResourceSkill           = "skill"
	ResourceLinkSkill       = "linkSkill"
)

// RequiredCharacterEndpoints must all succeed for a character record to exist.
var RequiredCharacterEndpoints = []Endpoint{
	{Resource: ResourceBasic, Path: nexon.PathCharacterBasic},
	{Resource: ResourceStat, Path: nexon.PathCharacterStat},
	{Resource: ResourceHyperStat, Path: nexon.PathCharacterHyperStat},
	{Resource: ResourceAbility, Path: nexon.PathCharacterAbility},
	{Resource: ResourceItemEquipment, Path: nexon.PathCharacterItemEquipment},
}

// ExtraCharacterEndpoints are the tab-level sub-resources that can be added
// with WithOptionalResources. Their failure only nulls the field.
var ExtraCharacterEndpoints = []Endpoint{
	{Resource: ResourceSymbolEquipment, Path: nexon.PathCharacterSymbolEquipment},
	{Resource: ResourceSkill, Path: nexon.PathCharacterSkill, Params: map[string]string{nexon.ParamSkillGrade: "6"}},
	{Resource: ResourceLinkSkill, Path: nexon.PathCharacterLinkSkill},
}

// CharacterFetcher aggregates the character sub-resources.
type CharacterFetcher struct {
	source   Source
	stamper  Stamper
	required []Endpoint
	optional []Endpoint
	logger   *zap.Logger
}

// CharacterOption configures a CharacterFetcher.
type CharacterOption func(*CharacterFetcher)

// WithOptionalResources adds sub-resources fetched in the same fan-out whose
// failure does not fail the record.
func WithOptionalResources(endpoints ...Endpoint) CharacterOption {
	return func(f *CharacterFetcher) {
		f.optional = append(f.optional, endpoints...)
	}
}

// NewCharacterFetcher creates a fetcher for the five required sub-resources.
func NewCharacterFetcher(source Source, stamper Stamper, logger *zap.Logger, opts ...CharacterOption) *CharacterFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &CharacterFetcher{
		source:   source,
		stamper:  stamper,
		required: RequiredCharacterEndpoints,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

/*
Load issues every sub-resource request in parallel and waits for all of them.

All-or-nothing: if any required call fails the whole aggregation fails and
no record is returned. The group has no shared cancellation, so every call
settles before Load returns.
*/
func (f *CharacterFetcher) Load(ctx context.Context, ocid string) (*types.Record, error) {
	ctx, span := tracer.Start(ctx, "fetcher.character",
		trace.WithAttributes(attribute.String("ocid", ocid)))
	defer span.End()

	required := make([]types.Document, len(f.required))
	optional := make([]types.Document, len(f.optional))

	var g errgroup.Group
	for i, ep := range f.required {
		g.Go(func() error {
			doc, err := f.source.Get(ctx, ep.Path, ep.params(nexon.ParamOCID, ocid))
			if err != nil {
				return err
			}
			required[i] = doc
			return nil
		})
	}
	for i, ep := range f.optional {
		g.Go(func() error {
			doc, err := f.source.Get(ctx, ep.Path, ep.params(nexon.ParamOCID, ocid))
			if err != nil {
				f.logger.Warn("optional character resource unavailable",
					zap.String("id", ocid),
					zap.String("resource", ep.Resource),
					zap.Error(err))
				return nil
			}
			optional[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "character aggregation failed")
		return nil, &Error{Kind: types.KindCharacter, ID: ocid, Err: err}
	}

	rec := types.NewRecord(types.KindCharacter, ocid)
	for i, ep := range f.required {
		rec.Resources[ep.Resource] = required[i]
	}
	for i, ep := range f.optional {
		rec.Resources[ep.Resource] = optional[i]
	}
	f.stamper.Stamp(rec)
	return rec, nil
}
