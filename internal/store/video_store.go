package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/grvbrk/yt-categorizer/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// readBackChunkSize bounds the IN list of a read-back query, well below the
// bind parameter limits of SQLite (32766) and Postgres (65535).
var readBackChunkSize = 500

type GetVideosParams struct {
	ChannelTitle string   `json:"channelTitle"`
	CategoryID   string   `json:"categoryId"`
	ChannelIDs   []string `json:"channelIds"`
	Page         int      `json:"page"`
	Limit        int      `json:"limit"`
}

func (p GetVideosParams) normalized() GetVideosParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

// offset saturates so that offset+limit still fits in an int. Absurd page
// numbers read past the end instead of wrapping around.
func (p GetVideosParams) offset() int {
	maxOffset := math.MaxInt - p.Limit
	if p.Page-1 > maxOffset/p.Limit {
		return maxOffset
	}
	return (p.Page - 1) * p.Limit
}

type VideosResponse struct {
	Videos     []models.Video    `json:"videos"`
	Pagination models.Pagination `json:"pagination"`
}

type VideoStore interface {
	// SaveVideos upserts by video ID and returns the stored records for the
	// given IDs. created_at is only written on first insert.
	SaveVideos(ctx context.Context, videos []models.Video) ([]models.Video, error)
	GetVideos(ctx context.Context, params GetVideosParams) (*VideosResponse, error)
	GetVideosByChannel(ctx context.Context, channelID string) ([]models.Video, error)
	ClearVideos(ctx context.Context) (int64, error)
	Close() error
}

type SQLVideoStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *logrus.Logger
}

func NewSQLVideoStore(db *sql.DB, dialect Dialect, logger *logrus.Logger) *SQLVideoStore {
	if db == nil {
		panic("db cannot be nil for SQLVideoStore")
	}
	return &SQLVideoStore{db: db, dialect: dialect, logger: logger}
}

const videoColumns = `id, title, description, published_at, channel_id, channel_title, category_id, tags, created_at`

const upsertVideoQuery = `
	INSERT INTO videos (` + videoColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		published_at = excluded.published_at,
		channel_id = excluded.channel_id,
		channel_title = excluded.channel_title,
		category_id = excluded.category_id,
		tags = excluded.tags
`

const insertVideoQuery = `
	INSERT INTO videos (` + videoColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (s *SQLVideoStore) SaveVideos(ctx context.Context, videos []models.Video) ([]models.Video, error) {
	if len(videos) == 0 {
		return []models.Video{}, nil
	}

	now := time.Now().UTC()

	upsertErr := s.upsertVideos(ctx, videos, now)
	if upsertErr != nil {
		s.logger.WithError(upsertErr).Warn("bulk upsert failed, falling back to plain insert")
		if err := s.insertVideos(ctx, videos, now); err != nil {
			return nil, errors.Wrapf(err, "fallback insert after upsert failure (%v)", upsertErr)
		}
	}

	return s.videosByID(ctx, videoIDs(videos))
}

// upsertVideos writes each row independently. It only fails when no row
// could be written at all.
func (s *SQLVideoStore) upsertVideos(ctx context.Context, videos []models.Video, now time.Time) error {
	stmt, err := s.db.PrepareContext(ctx, s.rebind(upsertVideoQuery))
	if err != nil {
		return errors.Wrap(err, "prepare upsert")
	}
	defer stmt.Close()

	written := 0
	var lastErr error
	for _, v := range videos {
		args, err := videoArgs(v, now)
		if err != nil {
			lastErr = err
			s.logger.WithError(err).WithField("video_id", v.Id).Warn("skipping video")
			continue
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			lastErr = err
			s.logger.WithError(err).WithField("video_id", v.Id).Warn("failed to upsert video")
			continue
		}
		written++
	}

	if written == 0 {
		return errors.Wrap(lastErr, "no videos upserted")
	}
	return nil
}

func (s *SQLVideoStore) insertVideos(ctx context.Context, videos []models.Video, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin insert")
	}
	defer tx.Rollback()

	query := s.rebind(insertVideoQuery)
	for _, v := range videos {
		args, err := videoArgs(v, now)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "insert video %s", v.Id)
		}
	}

	return errors.Wrap(tx.Commit(), "commit insert")
}

func (s *SQLVideoStore) videosByID(ctx context.Context, ids []string) ([]models.Video, error) {
	byID := make(map[string]models.Video, len(ids))
	for start := 0; start < len(ids); start += readBackChunkSize {
		end := min(start+readBackChunkSize, len(ids))
		if err := s.readVideosInto(ctx, ids[start:end], byID); err != nil {
			return nil, err
		}
	}

	videos := make([]models.Video, 0, len(byID))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

func (s *SQLVideoStore) readVideosInto(ctx context.Context, ids []string, byID map[string]models.Video) error {
	query := s.rebind(`SELECT ` + videoColumns + ` FROM videos WHERE id IN (` + placeholders(len(ids)) + `)`)

	rows, err := s.db.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return errors.Wrap(err, "failed to read back videos")
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return err
		}
		byID[v.Id] = v
	}
	return errors.Wrap(rows.Err(), "error iterating over video rows")
}

func (s *SQLVideoStore) GetVideos(ctx context.Context, params GetVideosParams) (*VideosResponse, error) {
	params = params.normalized()

	whereClauses := []string{}
	args := []any{}

	if title := strings.TrimSpace(params.ChannelTitle); title != "" {
		whereClauses = append(whereClauses, `LOWER(channel_title) LIKE LOWER(?) ESCAPE '\'`)
		args = append(args, "%"+escapeLike(title)+"%")
	}

	if params.CategoryID != "" {
		whereClauses = append(whereClauses, "category_id = ?")
		args = append(args, params.CategoryID)
	}

	if len(params.ChannelIDs) > 0 {
		whereClauses = append(whereClauses, "channel_id IN ("+placeholders(len(params.ChannelIDs))+")")
		args = append(args, stringArgs(params.ChannelIDs)...)
	}

	where := ""
	if len(whereClauses) > 0 {
		where = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	countQuery := s.rebind("SELECT COUNT(*) FROM videos " + where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, errors.Wrap(err, "failed to get total video count")
	}

	selectQuery := s.rebind(`
		SELECT ` + videoColumns + `
		FROM videos
		` + where + `
		ORDER BY published_at DESC, id ASC
		LIMIT ? OFFSET ?
	`)

	rows, err := s.db.QueryContext(ctx, selectQuery, append(args, params.Limit, params.offset())...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get videos")
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating over video rows")
	}

	return &VideosResponse{
		Videos:     videos,
		Pagination: models.NewPagination(params.Page, params.Limit, total),
	}, nil
}

func (s *SQLVideoStore) GetVideosByChannel(ctx context.Context, channelID string) ([]models.Video, error) {
	query := s.rebind(`
		SELECT ` + videoColumns + `
		FROM videos
		WHERE channel_id = ?
		ORDER BY published_at DESC, id ASC
	`)

	rows, err := s.db.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get channel videos")
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating over video rows")
	}
	return videos, nil
}

func (s *SQLVideoStore) ClearVideos(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM videos")
	if err != nil {
		return 0, errors.Wrap(err, "failed to clear videos")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count cleared videos")
	}
	return n, nil
}

func (s *SQLVideoStore) Close() error {
	return s.db.Close()
}

// rebind turns ? placeholders into $n for Postgres.
func (s *SQLVideoStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (models.Video, error) {
	var v models.Video
	var categoryID sql.NullString
	var tags string

	if err := row.Scan(
		&v.Id,
		&v.Title,
		&v.Description,
		&v.Published_At,
		&v.Channel_ID,
		&v.Channel_Title,
		&categoryID,
		&tags,
		&v.Created_At,
	); err != nil {
		return v, errors.Wrap(err, "failed to scan video row")
	}

	if categoryID.Valid {
		v.Category_ID = &categoryID.String
	}

	v.Tags = []string{}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &v.Tags); err != nil {
			return v, errors.Wrapf(err, "decode tags for video %s", v.Id)
		}
	}
	v.Created_At = v.Created_At.UTC()

	return v, nil
}

func videoArgs(v models.Video, createdAt time.Time) ([]any, error) {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, errors.Wrapf(err, "encode tags for video %s", v.Id)
	}

	var categoryID any
	if v.Category_ID != nil && *v.Category_ID != "" {
		categoryID = *v.Category_ID
	}

	return []any{
		v.Id,
		v.Title,
		v.Description,
		v.Published_At,
		v.Channel_ID,
		v.Channel_Title,
		categoryID,
		string(encoded),
		createdAt,
	}, nil
}

func videoIDs(videos []models.Video) []string {
	seen := make(map[string]struct{}, len(videos))
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		if _, ok := seen[v.Id]; ok {
			continue
		}
		seen[v.Id] = struct{}{}
		ids = append(ids, v.Id)
	}
	return ids
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
