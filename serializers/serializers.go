// Package serializers flattens entities into JSON-ready maps.
//
// Related entities that were never loaded, or that do not exist, come out as
// nil. Serialization never fails.
package serializers

import "github.com/Dosada05/async-tournament/models"

// Map is the transport representation of one entity.
type Map = map[string]any

func Tournament(t *models.Tournament) Map {
	if t == nil {
		return nil
	}
	return Map{
		"id":                 t.ID,
		"name":               t.Name,
		"active":             t.Active,
		"created":            t.CreatedAt,
		"updated":            t.UpdatedAt,
		"guild_id":           t.GuildID,
		"channel_id":         t.ChannelID,
		"owner_id":           t.OwnerID,
		"allowed_reattempts": t.AllowedReattempts,
	}
}

func User(u *models.User) Map {
	if u == nil {
		return nil
	}
	return Map{
		"id":              u.ID,
		"discord_user_id": u.DiscordUserID,
		"display_name":    u.DisplayName,
		"rtgg_id":         u.RtggID,
	}
}

func Pool(p *models.PermalinkPool) Map {
	if p == nil {
		return nil
	}
	return Map{
		"id":         p.ID,
		"tournament": ref(p.Tournament, Tournament),
		"name":       p.Name,
	}
}

func Permalink(p *models.Permalink) Map {
	if p == nil {
		return nil
	}
	return Map{
		"id":        p.ID,
		"permalink": p.URL,
		"pool":      ref(p.Pool, Pool),
		"live_race": p.LiveRace,
	}
}

func Race(r *models.Race) Map {
	if r == nil {
		return nil
	}
	return Map{
		"id":                  r.ID,
		"tournament":          ref(r.Tournament, Tournament),
		"permalink":           ref(r.Permalink, Permalink),
		"user":                ref(r.User, User),
		"thread_id":           r.ThreadID,
		"thread_open_time":    r.ThreadOpenTime,
		"thread_timeout_time": r.ThreadTimeoutTime,
		"start_time":          r.StartTime,
		"end_time":            r.EndTime,
		"created":             r.CreatedAt,
		"updated":             r.UpdatedAt,
		"status":              r.Status,
		"live_race":           r.LiveRace,
		"reattempted":         r.Reattempted,
		"runner_notes":        r.RunnerNotes,
		"runner_vod_url":      r.RunnerVodURL,
		"review_status":       r.ReviewStatus,
		"reviewed_by":         ref(r.ReviewedBy, User),
		"reviewed_at":         r.ReviewedAt,
		"reviewer_notes":      r.ReviewerNotes,
	}
}

func Whitelist(w *models.WhitelistEntry) Map {
	if w == nil {
		return nil
	}
	return Map{
		"id":         w.ID,
		"tournament": ref(w.Tournament, Tournament),
		"user":       ref(w.User, User),
	}
}

// ref serializes a relation, yielding nil when it is unloaded or absent.
func ref[T any](r models.Ref[T], fn func(*T) Map) Map {
	v, ok := r.Get()
	if !ok {
		return nil
	}
	return fn(v)
}

// List applies fn to every element of items.
func List[T any](items []T, fn func(*T) Map) []Map {
	out := make([]Map, len(items))
	for i := range items {
		out[i] = fn(&items[i])
	}
	return out
}
