// Package catalog holds the static, versioned reminder copy catalogs.
//
// Each catalog is an ordered list of (title, body) templates for one
// reminder category. Activity templates carry placeholder tokens that are
// substituted at fire time; every activity template contains each token
// exactly once.
package catalog

import (
	"strconv"
	"strings"

	"github.com/Forkful/MealNudge/internal/models"
)

// Version identifies the shipped copy set. Bumped whenever catalog content
// changes so rotation behavior across releases is explainable from logs.
const Version = 3

// Catalog names.
const (
	Breakfast = "breakfast"
	Lunch     = "lunch"
	Dinner    = "dinner"
	Activity  = "activity"
)

var breakfastTemplates = []models.CopyTemplate{
	{Title: "Good morning!", Body: "Start your day right. Log your breakfast and keep your streak going."},
	{Title: "Breakfast time", Body: "A logged breakfast is the easiest win of the day. What are you having?"},
	{Title: "Fuel up", Body: "Your body has been fasting all night. Log your first meal of the day."},
	{Title: "Morning check-in", Body: "Don't let breakfast slip by untracked. It only takes a few seconds."},
	{Title: "Rise and dine", Body: "Track your breakfast now and your daily numbers will thank you tonight."},
}

var lunchTemplates = []models.CopyTemplate{
	{Title: "Lunch break?", Body: "Take a minute to log your lunch before the afternoon gets busy."},
	{Title: "Midday check-in", Body: "Halfway through the day. Log your lunch to stay on top of your goals."},
	{Title: "Time to refuel", Body: "A quick lunch log keeps your calorie picture accurate."},
	{Title: "Lunch reminder", Body: "Whatever's on your plate, get it into your log while it's fresh."},
	{Title: "Don't skip the log", Body: "Eaten already? Great. Now make it count by tracking it."},
}

var dinnerTemplates = []models.CopyTemplate{
	{Title: "Dinner time", Body: "Wrap up your food day. Log your dinner and see where you landed."},
	{Title: "Evening check-in", Body: "One last log closes out the day. What's for dinner?"},
	{Title: "Almost done", Body: "Log dinner now and tomorrow-you gets a complete picture of today."},
	{Title: "Dinner reminder", Body: "Track your evening meal before you settle in for the night."},
	{Title: "Finish strong", Body: "A tracked dinner is the difference between a guess and a plan."},
}

var activityTemplates = []models.CopyTemplate{
	{Title: "Nice work!", Body: "You burned {burned} kcal doing {activity} for {duration}. That leaves {left} kcal for today."},
	{Title: "Activity logged", Body: "{duration} of {activity} just earned you {burned} kcal back. {left} kcal remaining."},
	{Title: "Keep it up!", Body: "That {activity} session ({duration}) burned {burned} kcal. You have {left} kcal left to enjoy."},
	{Title: "You're on fire", Body: "{burned} kcal gone after {duration} of {activity}. Budget for the rest of the day: {left} kcal."},
}

// fallback is returned when a catalog name is unknown or a catalog is
// empty; the engine degrades rather than failing a reminder.
var fallback = models.CopyTemplate{
	Title: "Reminder",
	Body:  "Time to check in with your food log.",
}

var catalogs = map[string][]models.CopyTemplate{
	Breakfast: breakfastTemplates,
	Lunch:     lunchTemplates,
	Dinner:    dinnerTemplates,
	Activity:  activityTemplates,
}

// Templates returns the catalog for the given name, or nil if unknown.
func Templates(name string) []models.CopyTemplate {
	return catalogs[name]
}

// Names returns the known catalog names.
func Names() []string {
	return []string{Breakfast, Lunch, Dinner, Activity}
}

// Fallback returns the safe template used when no catalog entry is
// available.
func Fallback() models.CopyTemplate {
	return fallback
}

// ActivityValues are the caller-supplied substitutions for an activity
// template.
type ActivityValues struct {
	Burned       int
	Activity     string
	Duration     string
	CaloriesLeft int
}

// FillActivity substitutes all placeholder occurrences in the template's
// title and body with the supplied values.
func FillActivity(tpl models.CopyTemplate, vals ActivityValues) models.CopyTemplate {
	replacer := strings.NewReplacer(
		models.PlaceholderBurned, strconv.Itoa(vals.Burned),
		models.PlaceholderActivity, vals.Activity,
		models.PlaceholderDuration, vals.Duration,
		models.PlaceholderLeft, strconv.Itoa(vals.CaloriesLeft),
	)
	return models.CopyTemplate{
		Title: replacer.Replace(tpl.Title),
		Body:  replacer.Replace(tpl.Body),
	}
}
