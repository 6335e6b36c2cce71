package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Fetcher --dir ../domain/pitcher --output domain/pitcher --outpkg pitchermock --filename fetcher_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ScheduleProvider --dir ../domain/game --output domain/game --outpkg gamemock --filename schedule_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name TeamStatsLoader --dir ../domain/game --output domain/game --outpkg gamemock --filename team_stats_loader_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name WeatherLoader --dir ../domain/game --output domain/game --outpkg gamemock --filename weather_loader_mock.go
