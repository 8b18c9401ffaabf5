package fetcher

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/krisalay/msea-cache/nexon"
	"github.com/krisalay/msea-cache/types"
)

// Guild derived links.
const (
	LinkGuildMasterOCID  = "guild_master_ocid"
	LinkGuildMasterImage = "guild_master_image"
)

// GuildFetcher aggregates a guild record and its guild-master enrichment.
type GuildFetcher struct {
	source  Source
	stamper Stamper
	logger  *zap.Logger
}

// NewGuildFetcher creates a guild fetcher.
func NewGuildFetcher(source Source, stamper Stamper, logger *zap.Logger) *GuildFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuildFetcher{source: source, stamper: stamper, logger: logger}
}

/*
Load runs the guild chain:
 1. guild/basic by oguild_id (required)
 2. guild master name → ocid (optional)
 3. guild master ocid → character/basic for the portrait (optional)

Steps 2 and 3 each wait on the previous one. When either is skipped or
fails, the corresponding links stay null and the record is still returned.
*/
func (f *GuildFetcher) Load(ctx context.Context, oguildID string) (*types.Record, error) {
	ctx, span := tracer.Start(ctx, "fetcher.guild",
		trace.WithAttributes(attribute.String("oguild_id", oguildID)))
	defer span.End()

	basic, err := f.source.Get(ctx, nexon.PathGuildBasic, map[string]string{nexon.ParamOGuildID: oguildID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "guild aggregation failed")
		return nil, &Error{Kind: types.KindGuild, ID: oguildID, Err: err}
	}

	rec := types.NewRecord(types.KindGuild, oguildID)
	rec.Resources[ResourceBasic] = basic
	rec.SetLink(LinkGuildMasterOCID, "")
	rec.SetLink(LinkGuildMasterImage, "")

	f.enrichMaster(ctx, rec, basic.String("guild_master_name"))

	f.stamper.Stamp(rec)
	return rec, nil
}

func (f *GuildFetcher) enrichMaster(ctx context.Context, rec *types.Record, masterName string) {
	if masterName == "" {
		return
	}
	log := f.logger.With(zap.String("id", rec.ID), zap.String("guild_master_name", masterName))

	idDoc, err := f.source.Get(ctx, nexon.PathCharacterID, map[string]string{nexon.ParamCharacterName: masterName})
	if err != nil {
		log.Warn("resolve guild master ocid", zap.Error(err))
		return
	}
	ocid := idDoc.String("ocid")
	if ocid == "" {
		log.Warn("resolve guild master ocid: empty ocid")
		return
	}
	rec.SetLink(LinkGuildMasterOCID, ocid)

	charDoc, err := f.source.Get(ctx, nexon.PathCharacterBasic, map[string]string{nexon.ParamOCID: ocid})
	if err != nil {
		log.Warn("fetch guild master portrait", zap.Error(err))
		return
	}
	rec.SetLink(LinkGuildMasterImage, charDoc.String("character_image"))
}
