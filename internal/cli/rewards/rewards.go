package rewards

import (
	"context"
	"fmt"

	"github.com/julianstephens/wellkept/internal/cli"
	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/ledger"
)

type AccountCmd struct{}

func (c *AccountCmd) Run(ctx *cli.Context) error {
	sum, err := ctx.Service.GetAccountSummary(context.Background(), ctx.Owner)
	if err != nil {
		return err
	}

	into := constants.PointsPerLevel - sum.PointsToNext
	ctx.Println(cli.TitleStyle.Render(fmt.Sprintf("%s · Level %d", ctx.Owner, sum.CurrentLevel)))
	ctx.Printf("  %s %d/%d to level %d\n",
		cli.ProgressBar(float64(into)/constants.PointsPerLevel, 20), into, constants.PointsPerLevel, sum.CurrentLevel+1)
	ctx.Printf("  Total points:   %d\n", sum.TotalPoints)
	ctx.Printf("  This week:      %d\n", sum.WeeklyPoints)
	ctx.Printf("  This month:     %d\n", sum.MonthlyPoints)
	ctx.Printf("  Today:          %d/%d habits\n", sum.CompletedToday, sum.ActiveHabits)
	ctx.Printf("  Rewards:        %d unlocked\n", sum.UnlockedCount)
	return nil
}

type RewardsCmd struct {
	All   bool `help:"Show every reward in the catalog with progress."`
	Check bool `help:"Run a reward evaluation pass before listing."`
}

func (c *RewardsCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if c.Check {
		unlocked, err := ctx.Service.GetNewlyUnlockedRewards(bg, ctx.Owner)
		if err != nil {
			return err
		}
		ctx.PrintRewards(unlocked)
	}

	var (
		list []ledger.RewardStatus
		err  error
	)
	if c.All {
		list, err = ctx.Service.RewardProgress(bg, ctx.Owner)
	} else {
		list, err = ctx.Service.ListUnlockedRewards(bg, ctx.Owner)
	}
	if err != nil {
		return err
	}

	if len(list) == 0 {
		ctx.Println("No rewards unlocked yet. Use --all to see what is available.")
		return nil
	}

	for _, kind := range []constants.RewardKind{constants.RewardBadge, constants.RewardAchievement} {
		printed := false
		for _, rs := range list {
			if rs.Reward.Kind != kind {
				continue
			}
			if !printed {
				ctx.Println(cli.TitleStyle.Render(kindTitle(kind)))
				printed = true
			}
			printStatus(ctx, rs, c.All)
		}
	}
	return nil
}

func kindTitle(kind constants.RewardKind) string {
	if kind == constants.RewardAchievement {
		return "Achievements"
	}
	return "Badges"
}

func printStatus(ctx *cli.Context, rs ledger.RewardStatus, withProgress bool) {
	r := rs.Reward
	if rs.Unlocked {
		when := ""
		if rs.UnlockedAt != nil {
			when = rs.UnlockedAt.Format(constants.DateFormat)
		}
		ctx.Printf("  %s %s %s\n", r.Icon, cli.RewardStyle.Render(r.Name), cli.MutedStyle.Render(when))
		return
	}
	if !withProgress {
		return
	}
	ctx.Printf("  %s %s %s %d/%d %s\n", r.Icon, cli.Truncate(r.Name, 18),
		cli.ProgressBar(rs.Progress, 12), rs.Current, r.Requirement.Value, cli.MutedStyle.Render(r.Description))
}
