package models

// DemoProjects returns the gallery shown on a fresh install before any
// project has been added.
func DemoProjects() []Project {
	return []Project{
		{
			LocalID:     "demo-1",
			Title:       "E-Commerce Platform",
			Description: "A full-stack e-commerce solution with real-time inventory management and secure payment processing.",
			ImageURL:    "/ecommerce-dashboard-modern.jpg",
			Tags:        []string{"Next.js", "MongoDB", "Stripe", "TypeScript"},
			GithubLink:  "https://github.com",
			HostedLink:  "https://demo.com",
			IsFeatured:  true,
		},
		{
			LocalID:     "demo-2",
			Title:       "AI Task Manager",
			Description: "Intelligent task management app powered by AI for smart scheduling and prioritization.",
			ImageURL:    "/task-management-app.png",
			Tags:        []string{"React", "AI SDK", "Node.js", "PostgreSQL"},
			GithubLink:  "https://github.com",
			HostedLink:  "https://demo.com",
			IsFeatured:  true,
		},
		{
			LocalID:     "demo-3",
			Title:       "Design System",
			Description: "Comprehensive design system with 50+ reusable components and complete documentation.",
			ImageURL:    "/design-system-library.png",
			Tags:        []string{"React", "CSS", "Storybook", "TypeScript"},
			GithubLink:  "https://github.com",
			HostedLink:  "https://demo.com",
		},
	}
}
