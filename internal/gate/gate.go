// Package gate решает, куда направить навигацию по маршрутам SPA
// в зависимости от того, есть ли у пользователя сессия.
package gate

import "strings"

const (
	HomePath  = "/home"
	LoginPath = "/login"
)

// Access описывает требование маршрута к сессии
type Access int

const (
	Unknown Access = iota
	Public
	Authenticated
)

var publicRoutes = map[string]bool{
	"/":        true,
	"/landing": true,
	"/login":   true,
}

// Маршруты с префиксом покрывают и вложенные экраны (/jobs/:id и т.п.)
var authenticatedRoutes = []string{
	"/home",
	"/profile",
	"/messages",
	"/jobs",
	"/trades",
	"/dashboard",
	"/settings",
	"/wishlist",
	"/purchases",
}

// Classify определяет тип маршрута
func Classify(path string) Access {
	path = normalize(path)
	if publicRoutes[path] {
		return Public
	}
	for _, route := range authenticatedRoutes {
		if path == route || strings.HasPrefix(path, route+"/") {
			return Authenticated
		}
	}
	return Unknown
}

// Resolve возвращает адрес перенаправления и false, если переход запрещён.
// Для разрешённых переходов возвращается пустая строка и true.
func Resolve(path string, authenticated bool) (string, bool) {
	switch Classify(path) {
	case Public:
		if authenticated {
			return HomePath, false
		}
	case Authenticated:
		if !authenticated {
			return LoginPath, false
		}
	}
	return "", true
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
