package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratep "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jessevdk/go-flags"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/lenscape/lenscape/internal/entities"
	"github.com/lenscape/lenscape/internal/storage"
	"github.com/lenscape/lenscape/internal/storage/postgres"
)

var opts = struct {
	Postgres           string `long:"postgres" env:"POSTGRES" default:"host=localhost port=5432 user=postgres password=root sslmode=disable" description:"postgres dsn"`
	PostgresMigrations string `long:"postgres.migrations" env:"POSTGRES_MIGRATIONS" default:"scripts/migrations/postgres" description:"postgres migrations directory"`
}{}

var users = []entities.User{
	{ID: "u-ansel", Username: "ansel", FirstName: "Ansel", LastName: "Adams", Bio: "landscapes and silver halides", Avatar: "https://images.example.com/avatars/ansel.jpg"},
	{ID: "u-dorothea", Username: "dorothea", FirstName: "Dorothea", LastName: "Lange", Bio: "documentary work", Avatar: "https://images.example.com/avatars/dorothea.jpg"},
	{ID: "u-vivian", Username: "vivian", FirstName: "Vivian", LastName: "Maier", Bio: "street photography", Avatar: "https://images.example.com/avatars/vivian.jpg"},
	{ID: "u-sebastiao", Username: "sebastiao", FirstName: "Sebastião", LastName: "Salgado", Bio: "genesis", Avatar: "https://images.example.com/avatars/sebastiao.jpg"},
}

var follows = [][2]string{
	{"u-dorothea", "u-ansel"},
	{"u-vivian", "u-ansel"},
	{"u-vivian", "u-dorothea"},
	{"u-ansel", "u-sebastiao"},
	{"u-sebastiao", "u-dorothea"},
}

var posts = []struct {
	owner    string
	image    string
	caption  string
	location string
}{
	{"u-ansel", "https://images.example.com/posts/halfdome.jpg", "Half Dome at dusk", "Yosemite"},
	{"u-ansel", "https://images.example.com/posts/tetons.jpg", "The Tetons and the Snake River", "Wyoming"},
	{"u-dorothea", "https://images.example.com/posts/migrant.jpg", "Waiting out the season", "Nipomo"},
	{"u-vivian", "https://images.example.com/posts/reflection.jpg", "Self portrait, shop window", "Chicago"},
	{"u-sebastiao", "https://images.example.com/posts/glacier.jpg", "", "South Georgia"},
}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "seed"
	parser.LongDescription = "Sample data seeder"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	logrus.Info("seed started")
	logrus.Infof("%+v", opts)

	db := mustGetDB()
	s := postgres.New(db)

	ctx := context.Background()
	t := time.Now().UTC()

	logrus.Info("import users")
	for i := range users {
		u := users[i]
		u.Email = u.Username + "@example.com"
		u.CreatedAt = t

		if _, err := s.UpsertUser(ctx, &u); err != nil {
			logrus.WithError(err).Fatal("failed to put user into db")
		}
	}

	logrus.Info("import follows")
	for _, f := range follows {
		if _, err := s.Follow(ctx, f[0], f[1], t); err != nil {
			logrus.WithError(err).Fatal("failed to put follow into db")
		}
	}

	logrus.Info("import posts")
	ids := make([]int64, 0, len(posts))
	for i, v := range posts {
		p, err := s.CreatePost(ctx, &storage.CreatePostParams{
			Owner:     v.owner,
			Image:     v.image,
			Caption:   v.caption,
			Location:  v.location,
			CreatedAt: t.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			logrus.WithError(err).Fatal("failed to put post into db")
		}
		ids = append(ids, p.ID)
	}

	logrus.Info("import likes and comments")
	for i, id := range ids {
		for _, u := range users {
			if u.ID == posts[i].owner {
				continue
			}

			if _, err := s.AddLike(ctx, u.ID, id, t); err != nil {
				logrus.WithError(err).Fatal("failed to put like into db")
			}
		}

		if _, err := s.CreateComment(ctx, &storage.CreateCommentParams{
			PostID:    id,
			Owner:     "u-vivian",
			Text:      "wonderful light",
			CreatedAt: t,
		}); err != nil {
			logrus.WithError(err).Fatal("failed to put comment into db")
		}
	}

	logrus.Info("import stories")
	for _, owner := range []string{"u-ansel", "u-dorothea"} {
		if _, err := s.CreateStory(ctx, &storage.CreateStoryParams{
			Owner:     owner,
			Image:     "https://images.example.com/stories/" + owner + ".jpg",
			CreatedAt: t,
			ExpiresAt: t.Add(entities.StoryTTL),
		}); err != nil {
			logrus.WithError(err).Fatal("failed to put story into db")
		}
	}

	logrus.Info("done")
}

func mustGetDB() *sql.DB {
	db, err := sql.Open("postgres", opts.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create postgres connection")
	}

	if err := db.PingContext(context.Background()); err != nil {
		logrus.WithError(err).Fatal("failed to ping postgres")
	}

	driver, err := migratep.WithInstance(db, &migratep.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create database migrate driver")
	}

	migrator, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", opts.PostgresMigrations), "postgres", driver)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create migrator")
	}

	switch v, d, err := migrator.Version(); err {
	case nil:
		logrus.Infof("database version %d with dirty state %t", v, d)
	case migrate.ErrNilVersion:
		logrus.Info("database version: nil")
	default:
		logrus.WithError(err).Fatal("failed to get version")
	}

	switch err := migrator.Up(); err {
	case nil:
		logrus.Info("database was migrated")
	case migrate.ErrNoChange:
		logrus.Info("database is up-to-date")
	default:
		logrus.WithError(err).Fatal("failed to migrate db")
	}

	return db
}
