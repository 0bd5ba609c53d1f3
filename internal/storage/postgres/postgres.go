// Package postgres is implementation of storage interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/lenscape/lenscape/internal/entities"
	"github.com/lenscape/lenscape/internal/storage"
)

var log = logrus.WithField("layer", "storage").WithField("package", "postgres")
var errBeginCalledWithinTx = errors.New("can not run InTx within tx")

const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

type pg struct {
	ext sqlx.ExtContext
}

// New creates new instance of pg.
func New(db *sql.DB) storage.Storage {
	return pg{
		ext: sqlx.NewDb(db, "postgres"),
	}
}

type userDTO struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Avatar    string    `db:"avatar"`
	Bio       string    `db:"bio"`
	Website   string    `db:"website"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type postDTO struct {
	ID        int64     `db:"id"`
	Owner     string    `db:"owner"`
	Image     string    `db:"image"`
	Caption   string    `db:"caption"`
	Location  string    `db:"location"`
	CreatedAt time.Time `db:"created_at"`
}

type commentDTO struct {
	ID        int64     `db:"id"`
	PostID    int64     `db:"post_id"`
	Owner     string    `db:"owner"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

type storyDTO struct {
	ID        int64     `db:"id"`
	Owner     string    `db:"owner"`
	Image     string    `db:"image"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

type notificationDTO struct {
	ID         int64          `db:"id"`
	Recipient  string         `db:"recipient"`
	Originator sql.NullString `db:"originator"`
	Type       string         `db:"type"`
	PostID     sql.NullInt64  `db:"post_id"`
	Message    string         `db:"message"`
	Read       bool           `db:"read"`
	CreatedAt  time.Time      `db:"created_at"`
}

const userColumns = `id, email, username, first_name, last_name, avatar, bio, website, created_at, updated_at`
const postColumns = `id, owner, image, caption, location, created_at`

func (s pg) InTx(ctx context.Context, f func(s storage.Storage) error) error {
	db, ok := s.ext.(*sqlx.DB)
	if !ok {
		return errBeginCalledWithinTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to create tx: %w", err)
	}

	if err := f(pg{ext: tx}); err != nil {
		if err := tx.Rollback(); err != nil {
			log.WithError(err).Error("failed to rollback tx")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}

func (s pg) GetUser(ctx context.Context, id string) (*entities.User, error) {
	var u userDTO

	if err := sqlx.GetContext(ctx, s.ext, &u,
		`SELECT `+userColumns+` FROM profile WHERE id = $1`, id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toUser(&u), nil
}

func (s pg) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	var u userDTO

	if err := sqlx.GetContext(ctx, s.ext, &u,
		`SELECT `+userColumns+` FROM profile WHERE username = $1`, username,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toUser(&u), nil
}

func (s pg) UpsertUser(ctx context.Context, u *entities.User) (*entities.User, error) {
	var out userDTO

	if err := sqlx.GetContext(ctx, s.ext, &out, `
			INSERT INTO profile(id, email, username, first_name, last_name, avatar, bio, website, created_at, updated_at)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
			ON CONFLICT(id) DO UPDATE SET
				email=excluded.email, username=excluded.username, first_name=excluded.first_name,
				last_name=excluded.last_name, avatar=excluded.avatar, bio=excluded.bio,
				website=excluded.website, updated_at=excluded.updated_at
			RETURNING `+userColumns,
		u.ID, u.Email, u.Username, u.FirstName, u.LastName, u.Avatar, u.Bio, u.Website, u.CreatedAt.UTC(),
	); err != nil {
		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return toUser(&out), nil
}

func (s pg) UpdateProfile(ctx context.Context, id string, p *storage.UpdateProfileParams) (*entities.User, error) {
	var out userDTO

	if err := sqlx.GetContext(ctx, s.ext, &out, `
			UPDATE profile SET
				username=COALESCE($2, username),
				first_name=COALESCE($3, first_name),
				last_name=COALESCE($4, last_name),
				avatar=COALESCE($5, avatar),
				bio=COALESCE($6, bio),
				website=COALESCE($7, website),
				updated_at=now() AT TIME ZONE 'utc'
			WHERE id=$1
			RETURNING `+userColumns,
		id, p.Username, p.FirstName, p.LastName, p.Avatar, p.Bio, p.Website,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return toUser(&out), nil
}

func (s pg) SearchUsers(ctx context.Context, query string, limit uint16) ([]*entities.User, error) {
	var uu []*userDTO

	pattern := "%" + escapeLike(query) + "%"

	if err := sqlx.SelectContext(ctx, s.ext, &uu, `
			SELECT `+userColumns+` FROM profile
			WHERE username ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1
			ORDER BY username
			LIMIT $2`,
		pattern, limit,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toUsers(uu), nil
}

func (s pg) GetUsers(ctx context.Context, id ...string) (map[string]*entities.User, error) {
	if len(id) == 0 {
		return map[string]*entities.User{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM profile WHERE id IN (?)`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to construct IN clause: %w", err)
	}

	var uu []*userDTO
	if err := sqlx.SelectContext(ctx, s.ext, &uu, s.ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make(map[string]*entities.User, len(uu))
	for _, v := range uu {
		out[v.ID] = toUser(v)
	}

	return out, nil
}

func (s pg) GetUserCounts(ctx context.Context, id string) (*entities.UserCounts, error) {
	var c struct {
		Posts     uint32 `db:"posts"`
		Followers uint32 `db:"followers"`
		Following uint32 `db:"following"`
	}

	if err := sqlx.GetContext(ctx, s.ext, &c, `
			SELECT
				(SELECT COUNT(*) FROM post WHERE owner=$1) AS posts,
				(SELECT COUNT(*) FROM follow WHERE followee=$1) AS followers,
				(SELECT COUNT(*) FROM follow WHERE follower=$1) AS following`,
		id,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return &entities.UserCounts{
		Posts:     c.Posts,
		Followers: c.Followers,
		Following: c.Following,
	}, nil
}

func (s pg) CreatePost(ctx context.Context, p *storage.CreatePostParams) (*entities.Post, error) {
	var out postDTO

	if err := sqlx.GetContext(ctx, s.ext, &out, `
			INSERT INTO post(owner, image, caption, location, created_at)
			VALUES($1, $2, $3, $4, $5)
			RETURNING `+postColumns,
		p.Owner, p.Image, p.Caption, p.Location, p.CreatedAt.UTC(),
	); err != nil {
		if isPqError(err, foreignKeyViolation) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return toPost(&out), nil
}

func (s pg) GetPost(ctx context.Context, id int64) (*entities.Post, error) {
	var p postDTO

	if err := sqlx.GetContext(ctx, s.ext, &p,
		`SELECT `+postColumns+` FROM post WHERE id = $1`, id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toPost(&p), nil
}

func (s pg) ListPosts(ctx context.Context, p *storage.ListPostsParams) ([]*entities.Post, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)

	switch {
	case p.FollowedBy != nil:
		args = append(args, *p.FollowedBy)
		where = append(where, fmt.Sprintf(
			`(owner = $%d OR owner IN (SELECT followee FROM follow WHERE follower = $%d))`, len(args), len(args)))
	case p.ExcludeOwner != nil:
		args = append(args, *p.ExcludeOwner)
		where = append(where, fmt.Sprintf(`owner <> $%d`, len(args)))
	case p.Owner != nil:
		args = append(args, *p.Owner)
		where = append(where, fmt.Sprintf(`owner = $%d`, len(args)))
	}

	if p.After != nil {
		var cur struct {
			CreatedAt time.Time `db:"created_at"`
			ID        int64     `db:"id"`
		}

		// resolve the cursor up front: an inline subquery over a vanished
		// post would compare against NULL and silently end the feed
		if err := sqlx.GetContext(ctx, s.ext, &cur,
			`SELECT created_at, id FROM post WHERE id = $1`, *p.After,
		); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, storage.ErrNotFound
			}

			return nil, fmt.Errorf("failed to resolve cursor: %w", err)
		}

		args = append(args, cur.CreatedAt, cur.ID)
		where = append(where, fmt.Sprintf(`(created_at, id) < ($%d, $%d)`, len(args)-1, len(args)))
	}

	q := `SELECT ` + postColumns + ` FROM post`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`

	if p.Limit > 0 {
		args = append(args, p.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	var pp []*postDTO
	if err := sqlx.SelectContext(ctx, s.ext, &pp, q, args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Post, len(pp))
	for i, v := range pp {
		out[i] = toPost(v)
	}

	return out, nil
}

func (s pg) DeletePost(ctx context.Context, id int64, owner string) error {
	res, err := s.ext.ExecContext(ctx,
		`DELETE FROM post WHERE id=$1 AND owner=$2`, id, owner,
	)
	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s pg) AddLike(ctx context.Context, owner string, postID int64, timestamp time.Time) (bool, error) {
	res, err := s.ext.ExecContext(ctx, `
			INSERT INTO "like"(owner, post_id, created_at) VALUES($1, $2, $3)
			ON CONFLICT(owner, post_id) DO NOTHING`,
		owner, postID, timestamp.UTC(),
	)
	if err != nil {
		if isPqError(err, foreignKeyViolation) {
			return false, storage.ErrNotFound
		}

		return false, fmt.Errorf("failed to exec: %w", err)
	}

	c, _ := res.RowsAffected()

	return c > 0, nil
}

func (s pg) RemoveLike(ctx context.Context, owner string, postID int64) (bool, error) {
	res, err := s.ext.ExecContext(ctx,
		`DELETE FROM "like" WHERE owner=$1 AND post_id=$2`, owner, postID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to exec: %w", err)
	}

	c, _ := res.RowsAffected()

	return c > 0, nil
}

func (s pg) GetLikeCounts(ctx context.Context, postID ...int64) (map[int64]uint32, error) {
	return s.getCounts(ctx, `"like"`, postID)
}

func (s pg) GetCommentCounts(ctx context.Context, postID ...int64) (map[int64]uint32, error) {
	return s.getCounts(ctx, `comment`, postID)
}

func (s pg) getCounts(ctx context.Context, table string, postID []int64) (map[int64]uint32, error) {
	out := make(map[int64]uint32, len(postID))
	if len(postID) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(
		`SELECT post_id, COUNT(*) AS count FROM `+table+` WHERE post_id IN (?) GROUP BY post_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to construct IN clause: %w", err)
	}

	var cc []struct {
		PostID int64  `db:"post_id"`
		Count  uint32 `db:"count"`
	}

	if err := sqlx.SelectContext(ctx, s.ext, &cc, s.ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	for _, v := range cc {
		out[v.PostID] = v.Count
	}

	return out, nil
}

func (s pg) GetLikedSet(ctx context.Context, likedBy string, postID ...int64) (map[int64]struct{}, error) {
	out := make(map[int64]struct{}, len(postID))
	if len(postID) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(
		`SELECT post_id FROM "like" WHERE owner = ? AND post_id IN (?)`, likedBy, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to construct IN clause: %w", err)
	}

	var ids []int64
	if err := sqlx.SelectContext(ctx, s.ext, &ids, s.ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	for _, v := range ids {
		out[v] = struct{}{}
	}

	return out, nil
}

func (s pg) CreateComment(ctx context.Context, p *storage.CreateCommentParams) (*entities.Comment, error) {
	var out commentDTO

	if err := sqlx.GetContext(ctx, s.ext, &out, `
			INSERT INTO comment(post_id, owner, text, created_at)
			VALUES($1, $2, $3, $4)
			RETURNING id, post_id, owner, text, created_at`,
		p.PostID, p.Owner, p.Text, p.CreatedAt.UTC(),
	); err != nil {
		if isPqError(err, foreignKeyViolation) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return toComment(&out, nil), nil
}

func (s pg) ListComments(ctx context.Context, postID int64) ([]*entities.Comment, error) {
	var cc []*struct {
		commentDTO
		Author userDTO `db:"author"`
	}

	if err := sqlx.SelectContext(ctx, s.ext, &cc, `
			SELECT c.id, c.post_id, c.owner, c.text, c.created_at,
				`+prefixedUserColumns("p", "author")+`
			FROM comment c
			JOIN profile p ON p.id = c.owner
			WHERE c.post_id = $1
			ORDER BY c.created_at DESC, c.id DESC`,
		postID,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Comment, len(cc))
	for i, v := range cc {
		out[i] = toComment(&v.commentDTO, toUser(&v.Author))
	}

	return out, nil
}

func (s pg) Follow(ctx context.Context, follower, followee string, timestamp time.Time) (bool, error) {
	res, err := s.ext.ExecContext(ctx, `
			INSERT INTO follow(follower, followee, created_at) VALUES($1, $2, $3)
			ON CONFLICT(follower, followee) DO NOTHING`,
		follower, followee, timestamp.UTC(),
	)
	if err != nil {
		if isPqError(err, foreignKeyViolation) {
			return false, storage.ErrNotFound
		}

		return false, fmt.Errorf("failed to exec: %w", err)
	}

	c, _ := res.RowsAffected()

	return c > 0, nil
}

func (s pg) Unfollow(ctx context.Context, follower, followee string) (bool, error) {
	res, err := s.ext.ExecContext(ctx,
		`DELETE FROM follow WHERE follower=$1 AND followee=$2`, follower, followee,
	)
	if err != nil {
		return false, fmt.Errorf("failed to exec: %w", err)
	}

	c, _ := res.RowsAffected()

	return c > 0, nil
}

func (s pg) IsFollowing(ctx context.Context, follower, followee string) (bool, error) {
	var out bool

	if err := sqlx.GetContext(ctx, s.ext, &out,
		`SELECT EXISTS(SELECT 1 FROM follow WHERE follower=$1 AND followee=$2)`,
		follower, followee,
	); err != nil {
		return false, fmt.Errorf("failed to query: %w", err)
	}

	return out, nil
}

func (s pg) ListFollowers(ctx context.Context, userID string, limit uint16) ([]*entities.User, error) {
	return s.listFollowUsers(ctx, `f.follower`, `f.followee`, userID, limit)
}

func (s pg) ListFollowing(ctx context.Context, userID string, limit uint16) ([]*entities.User, error) {
	return s.listFollowUsers(ctx, `f.followee`, `f.follower`, userID, limit)
}

func (s pg) listFollowUsers(ctx context.Context, joinOn, filterBy, userID string, limit uint16) ([]*entities.User, error) {
	var uu []*userDTO

	if err := sqlx.SelectContext(ctx, s.ext, &uu, `
			SELECT `+prefixedColumns("p")+`
			FROM follow f
			JOIN profile p ON p.id = `+joinOn+`
			WHERE `+filterBy+` = $1
			ORDER BY f.created_at DESC
			LIMIT $2`,
		userID, limit,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toUsers(uu), nil
}

func (s pg) CreateStory(ctx context.Context, p *storage.CreateStoryParams) (*entities.Story, error) {
	var out storyDTO

	if err := sqlx.GetContext(ctx, s.ext, &out, `
			INSERT INTO story(owner, image, created_at, expires_at)
			VALUES($1, $2, $3, $4)
			RETURNING id, owner, image, created_at, expires_at`,
		p.Owner, p.Image, p.CreatedAt.UTC(), p.ExpiresAt.UTC(),
	); err != nil {
		if isPqError(err, foreignKeyViolation) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return toStory(&out, nil), nil
}

func (s pg) ListFeedStories(ctx context.Context, viewer string, now time.Time) ([]*entities.Story, error) {
	var ss []*struct {
		storyDTO
		Author userDTO `db:"author"`
	}

	if err := sqlx.SelectContext(ctx, s.ext, &ss, `
			SELECT s.id, s.owner, s.image, s.created_at, s.expires_at,
				`+prefixedUserColumns("p", "author")+`
			FROM story s
			JOIN follow f ON f.followee = s.owner AND f.follower = $1
			JOIN profile p ON p.id = s.owner
			WHERE s.expires_at > $2
			ORDER BY s.created_at DESC, s.id DESC`,
		viewer, now.UTC(),
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Story, len(ss))
	for i, v := range ss {
		out[i] = toStory(&v.storyDTO, toUser(&v.Author))
	}

	return out, nil
}

func (s pg) ListUserStories(ctx context.Context, owner string, now time.Time) ([]*entities.Story, error) {
	var ss []*storyDTO

	if err := sqlx.SelectContext(ctx, s.ext, &ss, `
			SELECT id, owner, image, created_at, expires_at
			FROM story
			WHERE owner = $1 AND expires_at > $2
			ORDER BY created_at DESC, id DESC`,
		owner, now.UTC(),
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Story, len(ss))
	for i, v := range ss {
		out[i] = toStory(v, nil)
	}

	return out, nil
}

func (s pg) CreateNotification(ctx context.Context, p *storage.CreateNotificationParams, dedupWindow time.Duration) (*entities.Notification, bool, error) {
	var out notificationDTO

	err := sqlx.GetContext(ctx, s.ext, &out, `
			INSERT INTO notification(recipient, originator, type, post_id, message, created_at)
			SELECT $1, $2, $3, $4, $5, $6
			WHERE NOT EXISTS (
				SELECT 1 FROM notification
				WHERE recipient = $1
					AND originator IS NOT DISTINCT FROM $2
					AND type = $3
					AND post_id IS NOT DISTINCT FROM $4
					AND created_at > $7
			)
			RETURNING id, recipient, originator, type, post_id, message, read, created_at`,
		p.Recipient, p.Originator, p.Type, p.PostID, p.Message,
		p.CreatedAt.UTC(), p.CreatedAt.UTC().Add(-dedupWindow),
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// suppressed by the dedup window
			return nil, false, nil
		}
		if isPqError(err, foreignKeyViolation) {
			return nil, false, storage.ErrNotFound
		}

		return nil, false, fmt.Errorf("failed to exec: %w", err)
	}

	return toNotification(&out), true, nil
}

func (s pg) ListNotifications(ctx context.Context, recipient string) ([]*entities.Notification, error) {
	var nn []*struct {
		notificationDTO
		FromID        sql.NullString `db:"from_id"`
		FromUsername  sql.NullString `db:"from_username"`
		FromAvatar    sql.NullString `db:"from_avatar"`
		PostRefID     sql.NullInt64  `db:"post_ref_id"`
		PostRefOwner  sql.NullString `db:"post_ref_owner"`
		PostRefImage  sql.NullString `db:"post_ref_image"`
	}

	if err := sqlx.SelectContext(ctx, s.ext, &nn, `
			SELECT n.id, n.recipient, n.originator, n.type, n.post_id, n.message, n.read, n.created_at,
				u.id AS from_id, u.username AS from_username, u.avatar AS from_avatar,
				p.id AS post_ref_id, p.owner AS post_ref_owner, p.image AS post_ref_image
			FROM notification n
			LEFT JOIN profile u ON u.id = n.originator
			LEFT JOIN post p ON p.id = n.post_id
			WHERE n.recipient = $1
			ORDER BY n.created_at DESC, n.id DESC`,
		recipient,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Notification, len(nn))
	for i, v := range nn {
		n := toNotification(&v.notificationDTO)
		if v.FromID.Valid {
			n.FromUser = &entities.User{
				ID:       v.FromID.String,
				Username: v.FromUsername.String,
				Avatar:   v.FromAvatar.String,
			}
		}
		if v.PostRefID.Valid {
			n.Post = &entities.Post{
				ID:    v.PostRefID.Int64,
				Owner: v.PostRefOwner.String,
				Image: v.PostRefImage.String,
			}
		}
		out[i] = n
	}

	return out, nil
}

func (s pg) MarkNotificationRead(ctx context.Context, id int64) (bool, error) {
	res, err := s.ext.ExecContext(ctx,
		`UPDATE notification SET read=TRUE WHERE id=$1`, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to exec: %w", err)
	}

	c, _ := res.RowsAffected()

	return c > 0, nil
}

func isPqError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func prefixedColumns(alias string) string {
	cols := strings.Split(userColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func prefixedUserColumns(alias, as string) string {
	cols := strings.Split(userColumns, ", ")
	for i, c := range cols {
		cols[i] = fmt.Sprintf(`%s.%s AS "%s.%s"`, alias, c, as, c)
	}
	return strings.Join(cols, ", ")
}

func toUser(u *userDTO) *entities.User {
	return &entities.User{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		Website:   u.Website,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUsers(uu []*userDTO) []*entities.User {
	out := make([]*entities.User, len(uu))
	for i, v := range uu {
		out[i] = toUser(v)
	}
	return out
}

func toPost(p *postDTO) *entities.Post {
	return &entities.Post{
		ID:        p.ID,
		Owner:     p.Owner,
		Image:     p.Image,
		Caption:   p.Caption,
		Location:  p.Location,
		CreatedAt: p.CreatedAt,
	}
}

func toComment(c *commentDTO, author *entities.User) *entities.Comment {
	return &entities.Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		Owner:     c.Owner,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		Author:    author,
	}
}

func toStory(s *storyDTO, author *entities.User) *entities.Story {
	return &entities.Story{
		ID:        s.ID,
		Owner:     s.Owner,
		Image:     s.Image,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		Author:    author,
	}
}

func toNotification(n *notificationDTO) *entities.Notification {
	out := &entities.Notification{
		ID:        n.ID,
		Recipient: n.Recipient,
		Type:      entities.NotificationType(n.Type),
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}

	if n.Originator.Valid {
		v := n.Originator.String
		out.Originator = &v
	}
	if n.PostID.Valid {
		v := n.PostID.Int64
		out.PostID = &v
	}

	return out
}
