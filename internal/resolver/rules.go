package resolver

import "github.com/ashwch/sessionctl/internal/catalog"

type desktopRules struct {
	name     string
	aliases  []string
	commands map[catalog.Intent]string
}

var appleCommands = map[catalog.Intent]string{
	catalog.Lock:     `pmset displaysleepnow`,
	catalog.Logout:   `osascript -e 'tell app "System Events" to log out'`,
	catalog.Suspend:  `osascript -e 'tell app "System Events" to sleep'`,
	catalog.Reboot:   `osascript -e 'tell app "System Events" to restart'`,
	catalog.Poweroff: `osascript -e 'tell app "System Events" to shut down'`,
}

// unixDesktops is matched in order against each XDG_CURRENT_DESKTOP entry.
// Aliases compare exactly and case-sensitively.
var unixDesktops = []desktopRules{
	{
		name:    "gnome",
		aliases: []string{"GNOME", "Unity", "Pantheon"},
		commands: map[catalog.Intent]string{
			catalog.Lock:     `dbus-send --type=method_call --dest=org.gnome.ScreenSaver /org/gnome/ScreenSaver org.gnome.ScreenSaver.Lock`,
			catalog.Logout:   `gnome-session-quit --logout --no-prompt`,
			catalog.Reboot:   `gnome-session-quit --reboot --no-prompt`,
			catalog.Poweroff: `gnome-session-quit --power-off --no-prompt`,
		},
	},
	{
		name:    "kde",
		aliases: []string{"kde-plasma", "KDE"},
		commands: map[catalog.Intent]string{
			catalog.Lock:     `dbus-send --type=method_call --dest=org.freedesktop.ScreenSaver /ScreenSaver org.freedesktop.ScreenSaver.Lock`,
			catalog.Logout:   `dbus-send --session --type=method_call --dest=org.kde.Shutdown /Shutdown org.kde.Shutdown.logout`,
			catalog.Reboot:   `dbus-send --session --type=method_call --dest=org.kde.Shutdown /Shutdown org.kde.Shutdown.logoutAndReboot`,
			catalog.Poweroff: `dbus-send --session --type=method_call --dest=org.kde.Shutdown /Shutdown org.kde.Shutdown.logoutAndShutdown`,
		},
	},
	{
		name:    "cinnamon",
		aliases: []string{"X-Cinnamon", "Cinnamon"},
		commands: map[catalog.Intent]string{
			catalog.Lock:     `cinnamon-screensaver-command --lock`,
			catalog.Logout:   `cinnamon-session-quit --logout`,
			catalog.Reboot:   `cinnamon-session-quit --reboot`,
			catalog.Poweroff: `cinnamon-session-quit --power-off`,
		},
	},
	{
		name:    "mate",
		aliases: []string{"MATE"},
		commands: map[catalog.Intent]string{
			catalog.Lock:      `mate-screensaver-command --lock`,
			catalog.Logout:    `mate-session-save --logout-dialog`,
			catalog.Suspend:   `sh -c "mate-screensaver-command --lock && systemctl suspend -i"`,
			catalog.Hibernate: `sh -c "mate-screensaver-command --lock && systemctl hibernate -i"`,
			catalog.Reboot:    `mate-session-save --shutdown-dialog`,
			catalog.Poweroff:  `mate-session-save --shutdown-dialog`,
		},
	},
	{
		name:    "xfce",
		aliases: []string{"XFCE"},
		commands: map[catalog.Intent]string{
			catalog.Lock:      `xflock4`,
			catalog.Logout:    `xfce4-session-logout --logout`,
			catalog.Suspend:   `xfce4-session-logout --suspend`,
			catalog.Hibernate: `xfce4-session-logout --hibernate`,
			catalog.Reboot:    `xfce4-session-logout --reboot`,
			catalog.Poweroff:  `xfce4-session-logout --halt`,
		},
	},
	{
		name:    "lxqt",
		aliases: []string{"LXQt"},
		commands: map[catalog.Intent]string{
			catalog.Lock:      `lxqt-leave --lockscreen`,
			catalog.Logout:    `lxqt-leave --logout`,
			catalog.Suspend:   `lxqt-leave --suspend`,
			catalog.Hibernate: `lxqt-leave --hibernate`,
			catalog.Reboot:    `lxqt-leave --reboot`,
			catalog.Poweroff:  `lxqt-leave --shutdown`,
		},
	},
}

// unixGeneric applies when no desktop entry has a rule. Logout, reboot and
// poweroff have no portable command, so they tell the user instead of
// guessing.
var unixGeneric = map[catalog.Intent]string{
	catalog.Lock:      `xdg-screensaver lock`,
	catalog.Logout:    `notify-send "Error." "Logout command is not set." --icon=system-log-out`,
	catalog.Suspend:   `systemctl suspend -i`,
	catalog.Hibernate: `systemctl hibernate -i`,
	catalog.Reboot:    `notify-send "Error." "Reboot command is not set." --icon=system-reboot`,
	catalog.Poweroff:  `notify-send "Error." "Poweroff command is not set." --icon=system-shutdown`,
}

var desktopByAlias = indexDesktops(unixDesktops)

func indexDesktops(rules []desktopRules) map[string]desktopRules {
	index := make(map[string]desktopRules)
	for _, entry := range rules {
		for _, alias := range entry.aliases {
			if _, dup := index[alias]; dup {
				panic("resolver: desktop alias " + alias + " listed twice")
			}
			index[alias] = entry
		}
	}
	return index
}

func lookupDesktop(id string) (desktopRules, bool) {
	rules, ok := desktopByAlias[id]
	return rules, ok
}

// KnownDesktops returns the recognized desktop identifiers grouped by rule
// set, in table order.
func KnownDesktops() map[string][]string {
	out := make(map[string][]string, len(unixDesktops))
	for _, entry := range unixDesktops {
		out[entry.name] = append([]string(nil), entry.aliases...)
	}
	return out
}
