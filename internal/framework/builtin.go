package framework

import (
	"path/filepath"
	"strings"

	"github.com/harshul/project-compass/internal/doctor"
	"github.com/harshul/project-compass/internal/project"
)

// PythonEntryFiles are probed in order to find a Python application entry point.
var PythonEntryFiles = []string{"main.py", "app.py", "src/main.py", "src/app.py"}

// PythonEntry returns the first entry file present in dir, or "".
func PythonEntry(dir string) string {
	for _, f := range PythonEntryFiles {
		if HasFile(dir, f) {
			return f
		}
	}
	return ""
}

// scriptCommand prefers a declared manifest script and otherwise falls back to
// a fixed argv. A nil fallback runs the script through the package runner.
type scriptCommand struct {
	key      string
	label    string
	script   string
	fallback []string
}

func scriptCommands(entries ...scriptCommand) func(project.Record) project.CommandSet {
	return func(rec project.Record) project.CommandSet {
		var set project.CommandSet
		for _, e := range entries {
			argv := e.fallback
			if argv == nil || rec.Metadata.HasScript(e.script) {
				argv = rec.Metadata.ScriptArgv(e.script)
			}
			set.Set(e.key, project.CommandSpec{Label: e.label, Argv: argv, Source: project.SourceFramework})
		}
		return set
	}
}

func fixedCommands(entries ...project.Command) func(project.Record) project.CommandSet {
	return func(project.Record) project.CommandSet {
		set := project.NewCommandSet(entries...)
		return withSource(set, project.SourceFramework)
	}
}

func cmd(key, label string, argv ...string) project.Command {
	return project.Command{Key: key, Spec: project.CommandSpec{Label: label, Argv: argv}}
}

func anyDependency(rec project.Record, names ...string) bool {
	for _, n := range names {
		if DependencyMatches(rec.Metadata.Dependencies, n) {
			return true
		}
	}
	return false
}

func anyFile(rec project.Record, files ...string) bool {
	for _, f := range files {
		if HasFile(rec.Path, f) {
			return true
		}
	}
	return false
}

// pythonModule turns an entry file such as src/main.py into src.main.
func pythonModule(entry string) string {
	mod := strings.TrimSuffix(filepath.ToSlash(entry), ".py")
	return strings.ReplaceAll(mod, "/", ".")
}

var node = []project.Type{project.TypeNode}

// Builtins returns the built-in frameworks in evaluation order.
func Builtins() []Framework {
	return []Framework{
		{
			ID: "next", Name: "Next.js", Icon: "🧭", Description: "React + Next.js (SSR/SSG) apps",
			Languages: node, Priority: 115,
			Match: func(r project.Record) bool {
				return anyDependency(r, "next") || anyFile(r, "next.config.js", "next.config.mjs", "next.config.ts")
			},
			Commands: scriptCommands(
				scriptCommand{"run", "Next dev", "dev", []string{"npx", "next", "dev"}},
				scriptCommand{"build", "Next build", "build", []string{"npx", "next", "build"}},
				scriptCommand{"test", "Next test", "test", nil},
				scriptCommand{"start", "Next start", "start", []string{"npx", "next", "start"}},
			),
		},
		{
			ID: "react", Name: "React", Icon: "⚛️", Description: "React apps (CRA, Vite React)",
			Languages: node, Priority: 112,
			Match: func(r project.Record) bool {
				return anyDependency(r, "react") &&
					(anyDependency(r, "react-scripts", "vite") || anyFile(r, "vite.config.js", "vite.config.ts"))
			},
			Commands: scriptCommands(
				scriptCommand{"run", "React dev", "dev", nil},
				scriptCommand{"build", "React build", "build", nil},
				scriptCommand{"test", "React test", "test", nil},
			),
		},
		{
			ID: "vue", Name: "Vue.js", Icon: "🟩", Description: "Vue CLI or Vite + Vue apps",
			Languages: node, Priority: 111,
			Match: func(r project.Record) bool {
				return anyDependency(r, "vue") &&
					(anyFile(r, "vue.config.js") || anyDependency(r, "@vue/cli-service", "vite"))
			},
			Commands: scriptCommands(
				scriptCommand{"run", "Vue dev", "dev", nil},
				scriptCommand{"build", "Vue build", "build", nil},
				scriptCommand{"test", "Vue test", "test", nil},
			),
		},
		{
			ID: "nest", Name: "NestJS", Icon: "🛡️", Description: "NestJS backend",
			Languages: node, Priority: 110,
			Dependencies: []string{"@nestjs/cli", "@nestjs/core"},
			Commands: scriptCommands(
				scriptCommand{"run", "Nest dev", "start:dev", nil},
				scriptCommand{"build", "Nest build", "build", nil},
				scriptCommand{"test", "Nest test", "test", nil},
			),
		},
		{
			ID: "angular", Name: "Angular", Icon: "🅰️", Description: "Angular CLI projects",
			Languages: node, Priority: 109,
			Match: func(r project.Record) bool {
				return anyFile(r, "angular.json") || anyDependency(r, "@angular/cli")
			},
			Commands: scriptCommands(
				scriptCommand{"run", "Angular serve", "start", nil},
				scriptCommand{"build", "Angular build", "build", nil},
				scriptCommand{"test", "Angular test", "test", nil},
			),
		},
		{
			ID: "sveltekit", Name: "SvelteKit", Icon: "🌀", Description: "SvelteKit apps",
			Languages: node, Priority: 108,
			Match: func(r project.Record) bool {
				return anyFile(r, "svelte.config.js") || anyDependency(r, "@sveltejs/kit")
			},
			Commands: scriptCommands(
				scriptCommand{"run", "SvelteKit dev", "dev", nil},
				scriptCommand{"build", "SvelteKit build", "build", nil},
				scriptCommand{"test", "SvelteKit test", "test", nil},
				scriptCommand{"preview", "SvelteKit preview", "preview", nil},
			),
		},
		{
			ID: "nuxt", Name: "Nuxt", Icon: "🪄", Description: "Nuxt.js / Vue SSR",
			Languages: node, Priority: 107,
			Match: func(r project.Record) bool {
				return anyFile(r, "nuxt.config.js", "nuxt.config.ts") || anyDependency(r, "nuxt")
			},
			Commands: scriptCommands(
				scriptCommand{"run", "Nuxt dev", "dev", nil},
				scriptCommand{"build", "Nuxt build", "build", nil},
				scriptCommand{"start", "Nuxt start", "start", nil},
			),
		},
		{
			ID: "astro", Name: "Astro", Icon: "✨", Description: "Astro static sites",
			Languages: node, Priority: 106,
			Match: func(r project.Record) bool {
				return anyFile(r, "astro.config.mjs", "astro.config.ts") || anyDependency(r, "astro")
			},
			Commands: scriptCommands(
				scriptCommand{"run", "Astro dev", "dev", nil},
				scriptCommand{"build", "Astro build", "build", nil},
				scriptCommand{"preview", "Astro preview", "preview", nil},
			),
		},
		{
			ID: "django", Name: "Django", Icon: "🌿", Description: "Django web application",
			Languages: []project.Type{project.TypePython}, Priority: 110,
			Match: func(r project.Record) bool {
				return anyDependency(r, "django") || anyFile(r, "manage.py")
			},
			Commands: func(r project.Record) project.CommandSet {
				if !HasFile(r.Path, "manage.py") {
					return project.CommandSet{}
				}
				py := doctor.PythonBinary()
				return fixedCommands(
					cmd("run", "Django runserver", py, "manage.py", "runserver"),
					cmd("test", "Django test", py, "manage.py", "test"),
					cmd("migrate", "Django migrate", py, "manage.py", "migrate"),
				)(r)
			},
		},
		{
			ID: "flask", Name: "Flask", Icon: "🍶", Description: "Flask microservices",
			Languages: []project.Type{project.TypePython}, Priority: 105,
			Match: func(r project.Record) bool {
				return PythonEntry(r.Path) != "" && anyDependency(r, "flask", "flask-restful", "flask-cors")
			},
			Commands: func(r project.Record) project.CommandSet {
				return fixedCommands(
					cmd("run", "Flask app", doctor.PythonBinary(), PythonEntry(r.Path)),
					cmd("test", "Pytest", "pytest"),
				)(r)
			},
		},
		{
			ID: "fastapi", Name: "FastAPI", Icon: "⚡", Description: "FastAPI + Uvicorn",
			Languages: []project.Type{project.TypePython}, Priority: 105,
			Match: func(r project.Record) bool {
				return PythonEntry(r.Path) != "" && anyDependency(r, "fastapi", "pydantic", "uvicorn")
			},
			Commands: func(r project.Record) project.CommandSet {
				return fixedCommands(
					cmd("run", "Uvicorn reload", "uvicorn", pythonModule(PythonEntry(r.Path))+":app", "--reload"),
					cmd("test", "Pytest", "pytest"),
				)(r)
			},
		},
		{
			ID: "vite", Name: "Vite", Icon: "⚡", Description: "Vite powered frontends",
			Languages: node, Priority: 100,
			Match: func(r project.Record) bool {
				return anyFile(r, "vite.config.js", "vite.config.ts") || anyDependency(r, "vite")
			},
			Commands: scriptCommands(
				scriptCommand{"run", "Vite dev", "dev", nil},
				scriptCommand{"build", "Vite build", "build", nil},
				scriptCommand{"preview", "Vite preview", "preview", nil},
			),
		},
		{
			ID: "tailwind", Name: "Tailwind CSS", Icon: "🌬️", Description: "Utility-first CSS",
			Languages: node, Priority: 50,
			Match: func(r project.Record) bool {
				return anyFile(r, "tailwind.config.js", "tailwind.config.ts") || anyDependency(r, "tailwindcss")
			},
		},
		{
			ID: "prisma", Name: "Prisma", Icon: "◮", Description: "Prisma ORM",
			Languages: node, Priority: 50,
			Match: func(r project.Record) bool {
				return anyFile(r, "prisma/schema.prisma") || anyDependency(r, "@prisma/client")
			},
			Commands: fixedCommands(
				cmd("generate", "Prisma generate", "npx", "prisma", "generate"),
				cmd("studio", "Prisma studio", "npx", "prisma", "studio"),
			),
		},
		{
			ID: "spring", Name: "Spring Boot", Icon: "🌱", Description: "Spring Boot services",
			Languages: []project.Type{project.TypeJava}, Priority: 105,
			Match: func(r project.Record) bool {
				return anyDependency(r, "spring-boot-starter", "spring-boot-autoconfigure") ||
					anyFile(r, "src/main/resources/application.properties", "src/main/resources/application.yml")
			},
			Commands: func(r project.Record) project.CommandSet {
				if HasFile(r.Path, "gradlew") {
					return fixedCommands(
						cmd("run", "Gradle BootRun", "./gradlew", "bootRun"),
						cmd("build", "Gradle Build", "./gradlew", "build"),
						cmd("test", "Gradle Test", "./gradlew", "test"),
					)(r)
				}
				base := "mvn"
				if HasFile(r.Path, "mvnw") {
					base = "./mvnw"
				}
				return fixedCommands(
					cmd("run", "Spring Boot run", base, "spring-boot:run"),
					cmd("build", "Maven package", base, "package"),
					cmd("test", "Maven test", base, "test"),
				)(r)
			},
		},
		{
			ID: "rocket", Name: "Rocket", Icon: "🚀", Description: "Rocket web framework",
			Languages: []project.Type{project.TypeRust}, Priority: 105,
			Dependencies: []string{"rocket"},
			Commands: fixedCommands(
				cmd("run", "Rocket Run", "cargo", "run"),
				cmd("test", "Rocket Test", "cargo", "test"),
			),
		},
		{
			ID: "actix", Name: "Actix Web", Icon: "🦀", Description: "Actix web services",
			Languages: []project.Type{project.TypeRust}, Priority: 105,
			Dependencies: []string{"actix-web"},
			Commands: fixedCommands(
				cmd("run", "Actix Run", "cargo", "run"),
				cmd("test", "Actix Test", "cargo", "test"),
			),
		},
		{
			ID: "aspnet", Name: "ASP.NET Core", Icon: "🔷", Description: "ASP.NET Core web apps",
			Languages: []project.Type{project.TypeDotNet}, Priority: 105,
			Match: func(r project.Record) bool {
				return anyFile(r, "Program.cs") && anyFile(r, "appsettings.json", "web.config")
			},
			Commands: fixedCommands(
				cmd("run", "dotnet run", "dotnet", "run"),
				cmd("watch", "dotnet watch", "dotnet", "watch", "run"),
				cmd("test", "dotnet test", "dotnet", "test"),
			),
		},
		{
			ID: "laravel", Name: "Laravel", Icon: "🧡", Description: "Laravel PHP apps",
			Languages: []project.Type{project.TypePHP}, Priority: 105,
			Match: func(r project.Record) bool {
				return anyFile(r, "artisan") || anyDependency(r, "laravel/framework")
			},
			Commands: fixedCommands(
				cmd("run", "Artisan Serve", "php", "artisan", "serve"),
				cmd("test", "Artisan Test", "php", "artisan", "test"),
				cmd("migrate", "Artisan Migrate", "php", "artisan", "migrate"),
			),
		},
		{
			ID: "rails", Name: "Ruby on Rails", Icon: "🛤️", Description: "Rails applications",
			Languages: []project.Type{project.TypeRuby}, Priority: 105,
			Match: func(r project.Record) bool {
				return anyDependency(r, "rails") || anyFile(r, "bin/rails")
			},
			Commands: fixedCommands(
				cmd("run", "Rails server", "bundle", "exec", "rails", "server"),
				cmd("test", "Rails test", "bundle", "exec", "rails", "test"),
				cmd("migrate", "Rails migrate", "bundle", "exec", "rails", "db:migrate"),
			),
		},
		{
			ID: "sinatra", Name: "Sinatra", Icon: "🎩", Description: "Sinatra services",
			Languages: []project.Type{project.TypeRuby}, Priority: 100,
			Dependencies: []string{"sinatra"},
			Commands: fixedCommands(
				cmd("run", "Rackup", "bundle", "exec", "rackup"),
			),
		},
		{
			ID: "gin", Name: "Gin", Icon: "🍸", Description: "Gin HTTP services",
			Languages: []project.Type{project.TypeGo}, Priority: 100,
			Dependencies: []string{"github.com/gin-gonic/gin"},
			Commands: fixedCommands(
				cmd("run", "Gin server", "go", "run", "."),
			),
		},
		{
			ID: "echo", Name: "Echo", Icon: "📣", Description: "Echo HTTP services",
			Languages: []project.Type{project.TypeGo}, Priority: 100,
			Dependencies: []string{"github.com/labstack/echo/v4", "github.com/labstack/echo"},
			Commands: fixedCommands(
				cmd("run", "Echo server", "go", "run", "."),
			),
		},
		{
			ID: "fiber", Name: "Fiber", Icon: "🧵", Description: "Fiber HTTP services",
			Languages: []project.Type{project.TypeGo}, Priority: 100,
			Dependencies: []string{"github.com/gofiber/fiber/v2", "github.com/gofiber/fiber/v3"},
			Commands: fixedCommands(
				cmd("run", "Fiber server", "go", "run", "."),
			),
		},
	}
}
