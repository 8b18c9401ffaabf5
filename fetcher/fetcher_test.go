package fetcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/krisalay/msea-cache/nexon"
	"github.com/krisalay/msea-cache/types"
)

// fakeSource serves canned documents per path and records every call.
type fakeSource struct {
	mu     sync.Mutex
	docs   map[string]string
	errs   map[string]error
	calls  map[string]int
	params map[string]map[string]string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		docs:   make(map[string]string),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
		params: make(map[string]map[string]string),
	}
}

func (f *fakeSource) Get(_ context.Context, path string, params map[string]string) (types.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[path]++
	f.params[path] = params
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	doc, ok := f.docs[path]
	if !ok {
		return nil, &nexon.StatusError{Path: path, StatusCode: 404, Status: "404 Not Found"}
	}
	return types.Document(doc), nil
}

type fixedStamper struct{ now time.Time }

func (s fixedStamper) Stamp(rec *types.Record) {
	rec.LastUpdated = s.now
	rec.CacheExpiry = s.now.Add(30 * time.Minute)
}

var testNow = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

func characterSource() *fakeSource {
	src := newFakeSource()
	src.docs[nexon.PathCharacterBasic] = `{"character_name":"Tester","character_image":"https://img/tester.png"}`
	src.docs[nexon.PathCharacterStat] = `{"final_stat":[]}`
	src.docs[nexon.PathCharacterHyperStat] = `{"use_preset_no":"1"}`
	src.docs[nexon.PathCharacterAbility] = `{"ability_grade":"Legendary"}`
	src.docs[nexon.PathCharacterItemEquipment] = `{"item_equipment":[]}`
	return src
}

//
// ================= CHARACTER =================
//

func TestCharacterAllResourcesSucceed(t *testing.T) {
	src := characterSource()
	f := NewCharacterFetcher(src, fixedStamper{testNow}, nil)

	rec, err := f.Load(context.Background(), "A1B2C3D4E5")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.ID != "A1B2C3D4E5" || rec.Kind != types.KindCharacter {
		t.Fatalf("unexpected identity %s/%s", rec.Kind, rec.ID)
	}
	for _, ep := range RequiredCharacterEndpoints {
		if rec.Resource(ep.Resource).IsNull() {
			t.Fatalf("resource %s missing", ep.Resource)
		}
		if src.calls[ep.Path] != 1 {
			t.Fatalf("%s called %d times", ep.Path, src.calls[ep.Path])
		}
		if src.params[ep.Path][nexon.ParamOCID] != "A1B2C3D4E5" {
			t.Fatalf("%s params = %v", ep.Path, src.params[ep.Path])
		}
	}
	if rec.Resource(ResourceBasic).String("character_name") != "Tester" {
		t.Fatalf("basic = %s", rec.Resource(ResourceBasic))
	}
	if !rec.LastUpdated.Equal(testNow) || !rec.CacheExpiry.Equal(testNow.Add(30*time.Minute)) {
		t.Fatalf("record not stamped: %v / %v", rec.LastUpdated, rec.CacheExpiry)
	}
}

func TestCharacterOneFailureFailsAll(t *testing.T) {
	src := characterSource()
	upstream := &nexon.StatusError{Path: nexon.PathCharacterAbility, StatusCode: 500, Status: "500 Internal Server Error"}
	src.errs[nexon.PathCharacterAbility] = upstream
	f := NewCharacterFetcher(src, fixedStamper{testNow}, nil)

	rec, err := f.Load(context.Background(), "A1B2C3D4E5")
	if rec != nil {
		t.Fatalf("expected no record, got %+v", rec)
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fetchErr.Error() != "failed to fetch character data" {
		t.Fatalf("message = %q", fetchErr.Error())
	}
	if !errors.Is(err, upstream) {
		t.Fatal("cause should be reachable through Unwrap")
	}

	// every request was still issued
	for _, ep := range RequiredCharacterEndpoints {
		if src.calls[ep.Path] != 1 {
			t.Fatalf("%s called %d times", ep.Path, src.calls[ep.Path])
		}
	}
}

func TestCharacterOptionalFailureKeepsRecord(t *testing.T) {
	src := characterSource()
	src.docs[nexon.PathCharacterSkill] = `{"character_skill":[]}`
	src.errs[nexon.PathCharacterLinkSkill] = errors.New("boom")
	f := NewCharacterFetcher(src, fixedStamper{testNow}, nil, WithOptionalResources(ExtraCharacterEndpoints...))

	rec, err := f.Load(context.Background(), "A1B2C3D4E5")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Resource(ResourceSkill).IsNull() {
		t.Fatal("skill should be present")
	}
	if !rec.Resource(ResourceLinkSkill).IsNull() {
		t.Fatal("failed optional resource should be null")
	}
	if !rec.Resource(ResourceSymbolEquipment).IsNull() {
		t.Fatal("missing optional resource should be null")
	}
	if got := src.params[nexon.PathCharacterSkill][nexon.ParamSkillGrade]; got != "6" {
		t.Fatalf("skill grade = %q", got)
	}
}

//
// ================= GUILD =================
//

func guildSource() *fakeSource {
	src := newFakeSource()
	src.docs[nexon.PathGuildBasic] = `{"guild_name":"Guild","guild_master_name":"Master"}`
	src.docs[nexon.PathCharacterID] = `{"ocid":"M1"}`
	src.docs[nexon.PathCharacterBasic] = `{"character_image":"https://img/master.png"}`
	return src
}

func TestGuildFullChain(t *testing.T) {
	src := guildSource()
	f := NewGuildFetcher(src, fixedStamper{testNow}, nil)

	rec, err := f.Load(context.Background(), "G1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ocid, ok := rec.Link(LinkGuildMasterOCID); !ok || ocid != "M1" {
		t.Fatalf("master ocid = %q, %v", ocid, ok)
	}
	if img, ok := rec.Link(LinkGuildMasterImage); !ok || img != "https://img/master.png" {
		t.Fatalf("master image = %q, %v", img, ok)
	}
	if src.params[nexon.PathCharacterID][nexon.ParamCharacterName] != "Master" {
		t.Fatalf("id lookup params = %v", src.params[nexon.PathCharacterID])
	}
	if src.params[nexon.PathCharacterBasic][nexon.ParamOCID] != "M1" {
		t.Fatalf("portrait params = %v", src.params[nexon.PathCharacterBasic])
	}
}

func TestGuildPartialEnrichment(t *testing.T) {
	src := guildSource()
	src.errs[nexon.PathCharacterBasic] = errors.New("portrait unavailable")
	f := NewGuildFetcher(src, fixedStamper{testNow}, nil)

	rec, err := f.Load(context.Background(), "G1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ocid, ok := rec.Link(LinkGuildMasterOCID); !ok || ocid != "M1" {
		t.Fatalf("master ocid = %q, %v", ocid, ok)
	}
	if _, ok := rec.Link(LinkGuildMasterImage); ok {
		t.Fatal("master image should be null")
	}
	if rec.CacheExpiry.IsZero() {
		t.Fatal("partial record must still be stamped")
	}
}

func TestGuildMasterLookupFails(t *testing.T) {
	src := guildSource()
	src.errs[nexon.PathCharacterID] = errors.New("not found")
	f := NewGuildFetcher(src, fixedStamper{testNow}, nil)

	rec, err := f.Load(context.Background(), "G1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := rec.Link(LinkGuildMasterOCID); ok {
		t.Fatal("master ocid should be null")
	}
	if src.calls[nexon.PathCharacterBasic] != 0 {
		t.Fatal("portrait must not be requested without an ocid")
	}
}

func TestGuildWithoutMasterName(t *testing.T) {
	src := guildSource()
	src.docs[nexon.PathGuildBasic] = `{"guild_name":"Guild"}`
	f := NewGuildFetcher(src, fixedStamper{testNow}, nil)

	rec, err := f.Load(context.Background(), "G1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.calls[nexon.PathCharacterID] != 0 {
		t.Fatal("id lookup must be skipped without a master name")
	}
	if _, present := rec.DerivedLinks[LinkGuildMasterOCID]; !present {
		t.Fatal("links should be present as null")
	}
}

func TestGuildBasicFailureFails(t *testing.T) {
	src := guildSource()
	src.errs[nexon.PathGuildBasic] = errors.New("down")
	f := NewGuildFetcher(src, fixedStamper{testNow}, nil)

	rec, err := f.Load(context.Background(), "G1")
	var fetchErr *Error
	if rec != nil || !errors.As(err, &fetchErr) {
		t.Fatalf("Load = %v, %v", rec, err)
	}
	if fetchErr.Error() != "failed to fetch guild data" {
		t.Fatalf("message = %q", fetchErr.Error())
	}
	if src.calls[nexon.PathCharacterID] != 0 {
		t.Fatal("no enrichment after basic failure")
	}
}
