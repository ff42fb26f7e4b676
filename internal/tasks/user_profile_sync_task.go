package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slack-go/slack"

	"github.com/edgard/slackchat/internal/database"
)

const (
	profileSyncBatchSize = 50
	profileSyncTimeout   = 2 * time.Minute
)

// newUserProfileSyncTask fills the profile of users first seen through
// events. The reconciler only ever creates users by Slack id.
func newUserProfileSyncTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", UserProfileSync)

	return func(ctx context.Context) error {
		if deps.Slack == nil {
			log.DebugContext(ctx, "No Slack bot token configured, skipping profile sync")
			return nil
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, profileSyncTimeout)
		defer cancel()

		users, err := deps.Store.ListUsersWithoutProfile(timeoutCtx, profileSyncBatchSize)
		if err != nil {
			return fmt.Errorf("failed to list users without profile: %w", err)
		}
		if len(users) == 0 {
			log.DebugContext(ctx, "All user profiles are synced")
			return nil
		}

		var synced, failed int
		for i := range users {
			user := &users[i]

			info, err := deps.Slack.GetUserInfoContext(timeoutCtx, user.APIID)
			var rateLimited *slack.RateLimitedError
			switch {
			case errors.As(err, &rateLimited):
				log.WarnContext(ctx, "Slack rate limit hit, stopping profile sync",
					"retry_after", rateLimited.RetryAfter, "synced", synced)
				return nil
			case isUserNotFound(err):
				// Mark unknown users as synced with an empty profile so they are not retried forever.
				log.WarnContext(ctx, "Slack user not found", "user_api_id", user.APIID)
			case err != nil:
				if timeoutCtx.Err() != nil {
					return fmt.Errorf("profile sync interrupted: %w", timeoutCtx.Err())
				}
				log.WarnContext(ctx, "Failed to fetch Slack user", "user_api_id", user.APIID, "error", err)
				failed++
				if err := deps.Store.DeferUserProfileSync(timeoutCtx, user); err != nil {
					return fmt.Errorf("failed to defer profile sync for user %s: %w", user.APIID, err)
				}
				continue
			default:
				applyProfile(user, info)
			}

			if err := deps.Store.UpdateUserProfile(timeoutCtx, user); err != nil {
				return fmt.Errorf("failed to update profile for user %s: %w", user.APIID, err)
			}
			synced++
		}

		log.InfoContext(ctx, "User profile sync completed", "synced", synced, "failed", failed)
		return nil
	}
}

func isUserNotFound(err error) bool {
	var slackErr slack.SlackErrorResponse
	return errors.As(err, &slackErr) && slackErr.Err == "user_not_found"
}

func applyProfile(user *database.User, info *slack.User) {
	if info == nil {
		return
	}
	user.FirstName = info.Profile.FirstName
	user.LastName = info.Profile.LastName
	user.Title = info.Profile.Title
	user.Image = info.Profile.Image192
}
