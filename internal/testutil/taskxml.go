package testutil

// TaskXML is a task definition exercising most of the schema: several
// trigger kinds, two actions and two principals, with the actions bound
// to the second principal.
const TaskXML = `<?xml version="1.0" encoding="UTF-16"?>
<Task version="1.2" xmlns="http://schemas.microsoft.com/windows/2004/02/mit/task">
  <RegistrationInfo>
    <Date>2023-05-04T10:20:30</Date>
    <Author>CORP\alice</Author>
    <Description>Rotate application logs</Description>
    <URI>\Maintenance\RotateLogs</URI>
  </RegistrationInfo>
  <Triggers>
    <CalendarTrigger id="weekly">
      <StartBoundary>2023-05-08T02:00:00</StartBoundary>
      <EndBoundary>2024-05-08T02:00:00Z</EndBoundary>
      <Enabled>true</Enabled>
      <Repetition>
        <Interval>PT1H</Interval>
        <Duration>PT12H</Duration>
        <StopAtDurationEnd>true</StopAtDurationEnd>
      </Repetition>
      <ScheduleByWeek>
        <DaysOfWeek>
          <Monday />
          <Friday />
        </DaysOfWeek>
        <WeeksInterval>2</WeeksInterval>
      </ScheduleByWeek>
    </CalendarTrigger>
    <CalendarTrigger>
      <StartBoundary>2023-06-01T00:00:00</StartBoundary>
      <ScheduleByMonth>
        <DaysOfMonth>
          <Day>1</Day>
          <Day>15</Day>
          <Day>Last</Day>
        </DaysOfMonth>
        <Months>
          <January />
          <July />
        </Months>
      </ScheduleByMonth>
    </CalendarTrigger>
    <LogonTrigger>
      <UserId>CORP\bob</UserId>
      <Delay>PT30S</Delay>
    </LogonTrigger>
    <BootTrigger>
      <Enabled>false</Enabled>
    </BootTrigger>
  </Triggers>
  <Principals>
    <Principal id="Author">
      <UserId>CORP\alice</UserId>
      <LogonType>InteractiveToken</LogonType>
    </Principal>
    <Principal id="System">
      <UserId>S-1-5-18</UserId>
      <RunLevel>HighestAvailable</RunLevel>
    </Principal>
  </Principals>
  <Settings>
    <MultipleInstancesPolicy>IgnoreNew</MultipleInstancesPolicy>
    <DisallowStartIfOnBatteries>true</DisallowStartIfOnBatteries>
    <StopIfGoingOnBatteries>false</StopIfGoingOnBatteries>
    <AllowHardTerminate>true</AllowHardTerminate>
    <StartWhenAvailable>true</StartWhenAvailable>
    <IdleSettings>
      <Duration>PT10M</Duration>
      <WaitTimeout>PT1H</WaitTimeout>
      <StopOnIdleEnd>true</StopOnIdleEnd>
      <RestartOnIdle>false</RestartOnIdle>
    </IdleSettings>
    <RestartOnFailure>
      <Interval>PT5M</Interval>
      <Count>3</Count>
    </RestartOnFailure>
    <Enabled>true</Enabled>
    <Hidden>false</Hidden>
    <ExecutionTimeLimit>PT72H</ExecutionTimeLimit>
    <Priority>7</Priority>
  </Settings>
  <Actions Context="System">
    <Exec>
      <Command>C:\Tools\rotate.exe</Command>
      <Arguments>--keep 7  --compress</Arguments>
      <WorkingDirectory>C:\Logs</WorkingDirectory>
    </Exec>
    <ComHandler>
      <ClassId>{9F2B6F1E-0000-4000-8000-00AA00BB00CC}</ClassId>
      <Data>payload</Data>
    </ComHandler>
  </Actions>
</Task>
`
