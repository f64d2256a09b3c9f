package di

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"halfnote/internal/activity"
	"halfnote/internal/api"
	"halfnote/internal/cache"
	"halfnote/internal/config"
	"halfnote/internal/feed"
	"halfnote/internal/logger"
	"halfnote/internal/profile"
	"halfnote/internal/review"
	"halfnote/internal/social"
)

// Application bundles everything main needs to run and shut down the service.
type Application struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *gorm.DB
	Cache  *cache.RedisStore
	Server *api.Server
}

func ProvideConfig() *config.Config {
	return config.Load()
}

func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}

func ProvideCache(cfg *config.Config, log *zap.Logger) (*cache.RedisStore, func(), error) {
	store, err := cache.NewRedisStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// ProvideFollowerSource narrows the follow repository to the follower
// lookup the invalidator fans out over.
func ProvideFollowerSource(follows social.FollowRepository) activity.FollowerSource {
	return follows
}

func ProvideCachedFollowing(follows social.FollowRepository, store cache.Store, cfg *config.Config) *social.CachedFollowing {
	return social.NewCachedFollowing(follows, store, cfg.Cache.FollowingTTL)
}

func ProvideFollowingSource(following *social.CachedFollowing) feed.FollowingSource {
	return following
}

func ProvideReviewUsers(users social.UserSource) review.UserSource {
	return users
}

func ProvideFeedService(
	activities activity.ActivityRepository,
	following feed.FollowingSource,
	lookups feed.LookupRepository,
	store cache.Store,
	cfg *config.Config,
	log *zap.Logger,
) *feed.Service {
	return feed.NewService(activities, following, lookups, store, cfg.Cache.FeedTTL, log)
}

func ProvideProfileService(
	users social.UserSource,
	follows social.FollowRepository,
	reviews profile.ReviewSource,
	store cache.Store,
	cfg *config.Config,
	log *zap.Logger,
) *profile.Service {
	return profile.NewService(users, follows, reviews, store, cfg.Cache.Profile, cfg.Cache.UserReviews, log)
}
