//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"halfnote/internal/activity"
	"halfnote/internal/api"
	"halfnote/internal/cache"
	"halfnote/internal/dbmysql"
	"halfnote/internal/feed"
	"halfnote/internal/profile"
	"halfnote/internal/review"
	"halfnote/internal/social"
)

// This is just a declaration — wire generates the real body.
func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		dbmysql.NewMySQL,
		ProvideCache,
		wire.Bind(new(cache.Store), new(*cache.RedisStore)),

		social.NewFollowRepository,
		social.NewUserSource,
		ProvideFollowerSource,
		ProvideCachedFollowing,
		ProvideFollowingSource,

		activity.NewActivityRepository,
		activity.NewInvalidator,
		activity.NewRecorder,

		feed.NewLookupRepository,
		ProvideFeedService,

		review.NewRepository,
		wire.Bind(new(review.Reviews), new(*review.Repository)),
		wire.Bind(new(review.Likes), new(*review.Repository)),
		wire.Bind(new(review.Comments), new(*review.Repository)),
		ProvideReviewUsers,
		review.NewService,

		profile.NewReviewSource,
		ProvideProfileService,

		social.NewService,

		api.NewServer,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil, nil
}
