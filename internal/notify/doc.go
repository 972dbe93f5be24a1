// Package notify persists user-facing notifications for the dashboard.
//
// Notifications are deduplicated per user, module and category within a
// UTC calendar day so a module that stays offline produces one alert per
// day rather than one per monitor sweep.
package notify
